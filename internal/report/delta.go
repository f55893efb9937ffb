package report

import "hunit/internal/domain"

// Diff classifies every TestID present in either record. "bad" means the
// outcome was fail or error; everything else counts as good for diffing.
// The delta is the headline interactive signal after a re-run.
func Diff(previous, current *domain.RunRecord) *domain.Delta {
	delta := &domain.Delta{Changes: make(map[domain.TestID]domain.Change)}
	if current != nil {
		for id, curr := range current.Outcomes {
			prev, existed := previous.Lookup(id)
			switch {
			case !existed:
				delta.Changes[id] = domain.ChangeNew
			case prev.Bad() && curr.Bad():
				delta.Changes[id] = domain.ChangeStillBad
			case prev.Bad():
				delta.Changes[id] = domain.ChangeFixed
			case curr.Bad():
				delta.Changes[id] = domain.ChangeBroken
			default:
				delta.Changes[id] = domain.ChangeStillGood
			}
		}
	}
	if previous != nil {
		for id := range previous.Outcomes {
			if _, stillThere := current.Lookup(id); !stillThere {
				delta.Changes[id] = domain.ChangeRemoved
			}
		}
	}
	return delta
}
