package domain

import "time"

// Result is the immutable record of one executed test unit.
// Exactly one Result is produced per dispatched TestID; sub-tests produce one
// Result each plus a synthesizing Result for the parent.
type Result struct {
	ID       TestID        `json:"id"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`

	// Output holds everything the test logged while running. It is always
	// buffered per test, never interleaved live.
	Output string `json:"output,omitempty"`

	// Detail is the failure message or panic trace. Present iff the outcome
	// is fail, error or unexpected_success.
	Detail string `json:"detail,omitempty"`

	// Working-directory snapshot taken by the worker around the dispatch.
	// CwdChanged flags a leaked directory change as an anomaly; it is not
	// itself a failure.
	CwdBefore  string `json:"cwd_before,omitempty"`
	CwdAfter   string `json:"cwd_after,omitempty"`
	CwdChanged bool   `json:"cwd_changed,omitempty"`
}
