package domain

import "time"

// RunRecord maps every TestID of one completed run to its outcome.
// It persists across invocations and drives the next run's ordering and diffing.
type RunRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	Outcomes  map[TestID]Outcome `json:"outcomes"`
}

// NewRunRecord returns an empty record stamped with now.
func NewRunRecord() *RunRecord {
	return &RunRecord{
		Timestamp: time.Now().UTC(),
		Outcomes:  make(map[TestID]Outcome),
	}
}

// Lookup returns the recorded outcome for id, if any.
func (r *RunRecord) Lookup(id TestID) (Outcome, bool) {
	if r == nil || r.Outcomes == nil {
		return "", false
	}
	o, ok := r.Outcomes[id]
	return o, ok
}

// Len returns the number of recorded tests.
func (r *RunRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Outcomes)
}

// Change classifies how one TestID moved between two consecutive runs.
type Change string

const (
	ChangeNew       Change = "new"
	ChangeRemoved   Change = "removed"
	ChangeFixed     Change = "fixed"
	ChangeBroken    Change = "broken"
	ChangeStillBad  Change = "still_bad"
	ChangeStillGood Change = "still_good"
)

// Delta is the headline comparison between the previous and current RunRecord.
type Delta struct {
	Changes map[TestID]Change `json:"changes"`
}

// Count returns how many ids are classified as c.
func (d *Delta) Count(c Change) int {
	n := 0
	for _, got := range d.Changes {
		if got == c {
			n++
		}
	}
	return n
}

// IDs returns the ids classified as c, in no particular order.
func (d *Delta) IDs(c Change) []TestID {
	var ids []TestID
	for id, got := range d.Changes {
		if got == c {
			ids = append(ids, id)
		}
	}
	return ids
}
