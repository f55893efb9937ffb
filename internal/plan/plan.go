// Package plan turns the filtered test-id set plus prior history into an
// ordered execution plan.
package plan

import "hunit/internal/domain"

// Order selects the seed of the plan ordering.
type Order string

const (
	// OrderHistory surfaces previously-broken and new tests first: the
	// fastest feedback on whether a fix worked.
	OrderHistory Order = "history"
	// OrderDiscovery preserves the discovery order untouched.
	OrderDiscovery Order = "discovery"
)

// Valid reports whether o is a known order seed.
func (o Order) Valid() bool {
	return o == OrderHistory || o == OrderDiscovery
}

// Build returns the execution plan for included, fully determined before
// execution begins: no duplicates, every included id exactly once.
//
// With OrderHistory, ids are partitioned into bucket 0 (previous outcome
// fail/error, or absent from the previous record) and bucket 1 (everything
// else), bucket 0 first. Discovery order is preserved within each bucket.
func Build(included []domain.TestID, previous *domain.RunRecord, order Order) []domain.TestID {
	ids := dedupe(included)
	if order == OrderDiscovery {
		return ids
	}
	var bucket0, bucket1 []domain.TestID
	for _, id := range ids {
		prior, ok := previous.Lookup(id)
		if !ok || prior.Bad() {
			bucket0 = append(bucket0, id)
		} else {
			bucket1 = append(bucket1, id)
		}
	}
	return append(bucket0, bucket1...)
}

// OnlyFailed restricts included to ids whose previous outcome was bad,
// preserving order. New ids are not included: "run what failed last time"
// means exactly that.
func OnlyFailed(included []domain.TestID, previous *domain.RunRecord) []domain.TestID {
	var failed []domain.TestID
	for _, id := range dedupe(included) {
		if prior, ok := previous.Lookup(id); ok && prior.Bad() {
			failed = append(failed, id)
		}
	}
	return failed
}

func dedupe(ids []domain.TestID) []domain.TestID {
	seen := make(map[domain.TestID]struct{}, len(ids))
	var out []domain.TestID
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
