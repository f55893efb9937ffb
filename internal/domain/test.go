package domain

// TestID uniquely identifies one test case or sub-test instance.
// It is an opaque dotted name (e.g. "pkg.mod.TestCase.test_method"); a sub-test
// extends its parent id with a "/" discriminator. Ordering is string-based and
// used only as a tie-break.
type TestID string

// SubTestID derives the id of a sub-test nested under parent.
func SubTestID(parent TestID, name string) TestID {
	return parent + TestID("/"+name)
}

// Outcome is the final status of one executed test unit.
type Outcome string

const (
	OutcomePass              Outcome = "pass"
	OutcomeFail              Outcome = "fail"
	OutcomeError             Outcome = "error"
	OutcomeSkip              Outcome = "skip"
	OutcomeExpectedFailure   Outcome = "expected_failure"
	OutcomeUnexpectedSuccess Outcome = "unexpected_success"
)

// AllOutcomes lists every outcome in reporting order.
var AllOutcomes = []Outcome{
	OutcomePass,
	OutcomeFail,
	OutcomeError,
	OutcomeSkip,
	OutcomeExpectedFailure,
	OutcomeUnexpectedSuccess,
}

// Bad reports whether the outcome counts as a failure of the run.
// unexpected_success fails the run but does not affect re-run ordering.
func (o Outcome) Bad() bool {
	return o == OutcomeFail || o == OutcomeError
}

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	for _, known := range AllOutcomes {
		if o == known {
			return true
		}
	}
	return false
}
