package execution

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"hunit/internal/domain"
)

// Sentinels distinguishing the control-flow panics raised by FailNow and
// Skip from genuine crashes.
type failNowMarker struct{}
type skipMarker struct{}

// T is the capability handed to a test body. It mirrors the familiar testing
// surface: assertion failures (Errorf, Fatalf) yield outcome fail, uncaught
// panics yield outcome error, Skip yields skip, and ExpectFailure flips a
// failure into expected_failure and a pass into unexpected_success.
//
// All output is buffered per test and never interleaved live.
type T struct {
	id   domain.TestID
	emit func(domain.Result)

	mu            sync.Mutex
	output        strings.Builder
	details       []string
	failed        bool
	skipped       bool
	expectFailure bool
	subOutcomes   []domain.Outcome
}

func newT(id domain.TestID, emit func(domain.Result)) *T {
	return &T{id: id, emit: emit}
}

// ID returns the id of the running test unit.
func (t *T) ID() domain.TestID {
	return t.id
}

// Logf records output for the test. It is shown only in reports, never
// written through to the terminal mid-run.
func (t *T) Logf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&t.output, format+"\n", args...)
}

// Errorf records an assertion failure and keeps the body running.
func (t *T) Errorf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = true
	t.details = append(t.details, fmt.Sprintf(format, args...))
}

// Fail marks the test as failed without a message.
func (t *T) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = true
}

// Failed reports whether an assertion failure was recorded.
func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// FailNow marks the test as failed and aborts the body.
func (t *T) FailNow() {
	t.Fail()
	panic(failNowMarker{})
}

// Fatalf records an assertion failure and aborts the body.
func (t *T) Fatalf(format string, args ...any) {
	t.Errorf(format, args...)
	panic(failNowMarker{})
}

// Skipf records a skip reason and aborts the body.
func (t *T) Skipf(format string, args ...any) {
	t.mu.Lock()
	t.skipped = true
	t.details = append(t.details, fmt.Sprintf(format, args...))
	t.mu.Unlock()
	panic(skipMarker{})
}

// Skip aborts the body with outcome skip.
func (t *T) Skip(reason string) {
	t.Skipf("%s", reason)
}

// ExpectFailure declares that this test is known to fail: any failure,
// assertion or crash alike, becomes expected_failure and a pass becomes
// unexpected_success.
func (t *T) ExpectFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expectFailure = true
}

// Run executes a sub-test inline on the parent's worker slot. It emits one
// Result for the sub-test as it completes; the parent's synthesizing Result
// follows once the whole body returns. Sub-tests do not consume a separate
// worker slot and do not abort the parent when they fail.
func (t *T) Run(name string, fn func(*T)) {
	sub := newT(domain.SubTestID(t.id, name), t.emit)
	start := time.Now()
	crash := invoke(sub, fn)
	res := sub.finish(time.Since(start), crash)
	t.mu.Lock()
	t.subOutcomes = append(t.subOutcomes, res.Outcome)
	t.mu.Unlock()
	if t.emit != nil {
		t.emit(res)
	}
}

// invoke calls fn(t) synchronously, translating control-flow panics and
// crashes. It returns a non-empty crash detail when the body panicked with
// something other than the FailNow/Skip sentinels.
func invoke(t *T, fn func(*T)) string {
	var crash string
	func() {
		defer func() {
			switch r := recover(); r.(type) {
			case nil, failNowMarker, skipMarker:
			default:
				crash = fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
			}
		}()
		fn(t)
	}()
	return crash
}

// finish folds the recorded state into the unit's single Result. crash, when
// non-empty, is the detail of an uncaught panic or a dead execution context
// and forces outcome error unless the test declared ExpectFailure.
func (t *T) finish(duration time.Duration, crash string) domain.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := domain.Result{
		ID:       t.id,
		Duration: duration,
		Output:   t.output.String(),
	}
	detail := strings.Join(t.details, "\n")

	switch {
	case crash != "" && t.expectFailure:
		// A declared-failing test may die any way it likes; the crash is the
		// expected failure. The trace stays reviewable in the output.
		res.Outcome = domain.OutcomeExpectedFailure
		res.Output += crash
	case crash != "":
		res.Outcome = domain.OutcomeError
		if detail != "" {
			detail += "\n"
		}
		res.Detail = detail + crash
	case t.skipped:
		res.Outcome = domain.OutcomeSkip
		if detail != "" {
			res.Output += "skipped: " + detail + "\n"
		}
	case t.expectFailure && t.failed:
		res.Outcome = domain.OutcomeExpectedFailure
	case t.expectFailure && !t.failed:
		res.Outcome = domain.OutcomeUnexpectedSuccess
		res.Detail = "test was expected to fail but passed"
	case t.failed:
		res.Outcome = domain.OutcomeFail
		res.Detail = detail
	default:
		res.Outcome = t.synthesized()
		if res.Outcome.Bad() {
			res.Detail = "sub-test failure"
		}
	}
	return res
}

// synthesized derives the parent outcome from its sub-tests when the parent
// body recorded nothing itself.
func (t *T) synthesized() domain.Outcome {
	outcome := domain.OutcomePass
	for _, sub := range t.subOutcomes {
		if sub == domain.OutcomeError {
			return domain.OutcomeError
		}
		if sub == domain.OutcomeFail {
			outcome = domain.OutcomeFail
		}
	}
	return outcome
}
