// Package report consumes the scheduler's result stream: live progress
// state, the current RunRecord, the run-to-run delta and the durable
// failure log.
package report

import (
	"strings"
	"sync"

	"hunit/internal/domain"
)

// Aggregator folds the completion-order result stream into the final report.
// Event emission is a side effect and never blocks the scheduler; correctness
// lives in the accumulated RunRecord and counters.
type Aggregator struct {
	sink    EventSink
	failLog *FailureLog

	mu       sync.Mutex
	total    int
	run      int
	counts   map[domain.Outcome]int
	inFlight map[domain.TestID]struct{}
	record   *domain.RunRecord
	results  []domain.Result
	logErr   error
	stopOnce sync.Once
}

// NewAggregator returns an aggregator for a plan of total units. failLog may
// be nil to disable the durable log; sink may be NopSink for quiet mode.
func NewAggregator(total int, sink EventSink, failLog *FailureLog) *Aggregator {
	if sink == nil {
		sink = NopSink{}
	}
	return &Aggregator{
		sink:     sink,
		failLog:  failLog,
		total:    total,
		counts:   make(map[domain.Outcome]int),
		inFlight: make(map[domain.TestID]struct{}),
		record:   domain.NewRunRecord(),
	}
}

// TestStarted tracks a dispatched unit. Wire it as the scheduler's dispatch
// callback; it is safe from any worker goroutine.
func (a *Aggregator) TestStarted(id domain.TestID) {
	a.mu.Lock()
	a.inFlight[id] = struct{}{}
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.sink.Emit(domain.Event{Kind: domain.EventTestStarted, ID: id, Snapshot: snap})
}

// Start emits the run_started event. Call it before the scheduler begins
// dispatching so no test_started event can precede it.
func (a *Aggregator) Start() {
	a.sink.Emit(domain.Event{Kind: domain.EventRunStarted, Snapshot: a.Snapshot()})
}

// Consume drains the result stream. stop, when non-nil, is invoked once on
// the first fail/error result: the failfast hook into the scheduler.
// Consume returns when the stream closes.
func (a *Aggregator) Consume(results <-chan domain.Result, stop func()) {
	for res := range results {
		if res.Outcome.Bad() && stop != nil {
			a.stopOnce.Do(stop)
		}
		a.add(res)
	}
}

func (a *Aggregator) add(res domain.Result) {
	a.mu.Lock()
	a.counts[res.Outcome]++
	a.record.Outcomes[res.ID] = res.Outcome
	a.results = append(a.results, res)
	if !isSubTest(res.ID) {
		a.run++
		delete(a.inFlight, res.ID)
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if needsLogging(res.Outcome) && a.failLog != nil {
		if err := a.failLog.Append(res); err != nil {
			a.mu.Lock()
			if a.logErr == nil {
				a.logErr = err
			}
			a.mu.Unlock()
		}
	}
	r := res
	a.sink.Emit(domain.Event{Kind: domain.EventTestFinished, ID: res.ID, Result: &r, Snapshot: snap})
	a.sink.Emit(domain.Event{Kind: domain.EventProgress, Snapshot: snap})
}

// Finalize closes the run: never-dispatched ids carry their previous outcome
// forward into the new RunRecord, the delta against the previous record is
// computed and the run_finished event emitted. Call after Consume returns.
func (a *Aggregator) Finalize(previous *domain.RunRecord, notRun []domain.TestID) (*domain.RunRecord, *domain.Delta) {
	a.mu.Lock()
	for _, id := range notRun {
		if prior, ok := previous.Lookup(id); ok {
			a.record.Outcomes[id] = prior
		}
	}
	record := a.record
	snap := a.snapshotLocked()
	a.mu.Unlock()

	delta := Diff(previous, record)
	a.sink.Emit(domain.Event{
		Kind:     domain.EventRunFinished,
		Snapshot: snap,
		Delta:    delta,
		NotRun:   notRun,
	})
	return record, delta
}

// Snapshot returns the live state of the run.
func (a *Aggregator) Snapshot() domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() domain.Snapshot {
	counts := make(map[domain.Outcome]int, len(a.counts))
	for o, n := range a.counts {
		counts[o] = n
	}
	var inFlight []domain.TestID
	for id := range a.inFlight {
		inFlight = append(inFlight, id)
	}
	return domain.Snapshot{
		Total:    a.total,
		Run:      a.run,
		Counts:   counts,
		InFlight: inFlight,
	}
}

// Results returns every accumulated result in completion order.
func (a *Aggregator) Results() []domain.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Result, len(a.results))
	copy(out, a.results)
	return out
}

// Success reports whether every executed test passed, skipped or failed
// expectedly.
func (a *Aggregator) Success() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[domain.OutcomeFail] == 0 &&
		a.counts[domain.OutcomeError] == 0 &&
		a.counts[domain.OutcomeUnexpectedSuccess] == 0
}

// LogError returns the first failure-log write error, if any. Log failures
// never abort the run; the caller surfaces them as a warning.
func (a *Aggregator) LogError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logErr
}

func needsLogging(o domain.Outcome) bool {
	return o.Bad() || o == domain.OutcomeUnexpectedSuccess
}

func isSubTest(id domain.TestID) bool {
	return strings.Contains(string(id), "/")
}
