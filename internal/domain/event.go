package domain

// EventKind discriminates the aggregator's structured event stream.
type EventKind string

const (
	EventRunStarted   EventKind = "run_started"
	EventTestStarted  EventKind = "test_started"
	EventTestFinished EventKind = "test_finished"
	EventProgress     EventKind = "progress"
	EventRunFinished  EventKind = "run_finished"
)

// Snapshot is the live state of a run at some point in the result stream.
type Snapshot struct {
	Total    int             `json:"total"`
	Run      int             `json:"run"`
	Counts   map[Outcome]int `json:"counts"`
	InFlight []TestID        `json:"in_flight,omitempty"`
}

// Event is one entry of the reporting stream. The presentation layer decides
// how (and whether) to render it; emitting events never blocks the scheduler.
type Event struct {
	Kind     EventKind `json:"kind"`
	ID       TestID    `json:"id,omitempty"`
	Result   *Result   `json:"result,omitempty"`
	Snapshot Snapshot  `json:"snapshot"`
	Delta    *Delta    `json:"delta,omitempty"`
	NotRun   []TestID  `json:"not_run,omitempty"`
}
