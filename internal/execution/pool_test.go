package execution

import (
	"errors"
	"os"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hunit/internal/domain"
)

func collect(t *testing.T, stream <-chan domain.Result) map[domain.TestID]domain.Result {
	t.Helper()
	results := make(map[domain.TestID]domain.Result)
	for res := range stream {
		_, dup := results[res.ID]
		require.False(t, dup, "duplicate result for %s", res.ID)
		results[res.ID] = res
	}
	return results
}

func passing(*T) {}

func TestPool_EveryPlannedCaseProducesExactlyOneResult(t *testing.T) {
	cases := []Case{
		{ID: "pkg.a.TestA.test_1", Body: passing},
		{ID: "pkg.a.TestA.test_2", Body: func(t *T) { t.Errorf("nope") }},
		{ID: "pkg.a.TestA.test_3", Body: func(t *T) { t.Skip("later") }},
		{ID: "pkg.broken", Err: errors.New("import failed")},
		{ID: "pkg.a.TestA.test_4", Body: func(t *T) { panic("boom") }},
	}
	pool := NewPool(3, false)
	results := collect(t, pool.Execute(cases))

	require.Len(t, results, len(cases), "no loss, no duplication")
	assert.Equal(t, domain.OutcomePass, results["pkg.a.TestA.test_1"].Outcome)
	assert.Equal(t, domain.OutcomeFail, results["pkg.a.TestA.test_2"].Outcome)
	assert.Equal(t, domain.OutcomeSkip, results["pkg.a.TestA.test_3"].Outcome)
	assert.Equal(t, domain.OutcomeError, results["pkg.broken"].Outcome)
	assert.Contains(t, results["pkg.broken"].Detail, "collection error")
	assert.Equal(t, domain.OutcomeError, results["pkg.a.TestA.test_4"].Outcome)
	assert.Empty(t, pool.NotRun())
}

func TestPool_CrashIsolation(t *testing.T) {
	// A crashing execution context yields one error result and does not
	// prevent later planned tests from running.
	cases := []Case{
		{ID: "pkg.a.test_panics", Body: func(*T) { panic("segfault-ish") }},
		{ID: "pkg.a.test_goexit", Body: func(*T) { runtime.Goexit() }},
		{ID: "pkg.a.test_after", Body: passing},
	}
	pool := NewPool(1, false)
	results := collect(t, pool.Execute(cases))

	require.Len(t, results, 3)
	assert.Equal(t, domain.OutcomeError, results["pkg.a.test_panics"].Outcome)
	assert.Contains(t, results["pkg.a.test_panics"].Detail, "panic: segfault-ish")
	assert.Equal(t, domain.OutcomeError, results["pkg.a.test_goexit"].Outcome)
	assert.Contains(t, results["pkg.a.test_goexit"].Detail, "aborted its execution context")
	assert.Equal(t, domain.OutcomePass, results["pkg.a.test_after"].Outcome)
}

func TestPool_FailFastStopsDispatch(t *testing.T) {
	cases := []Case{
		{ID: "t1", Body: passing},
		{ID: "t2", Body: func(t *T) { t.Errorf("broken") }},
		{ID: "t3", Body: passing},
		{ID: "t4", Body: passing},
	}
	pool := NewPool(1, true)
	results := collect(t, pool.Execute(cases))

	require.Len(t, results, 2, "t3 and t4 are never dispatched")
	assert.Equal(t, domain.OutcomePass, results["t1"].Outcome)
	assert.Equal(t, domain.OutcomeFail, results["t2"].Outcome)

	notRun := pool.NotRun()
	require.Equal(t, []domain.TestID{"t3", "t4"}, notRun, "not-run ids come back in plan order")
}

func TestPool_StopIsCooperative(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	cases := []Case{
		{ID: "t1", Body: func(*T) { close(started); <-release }},
		{ID: "t2", Body: passing},
	}
	pool := NewPool(1, false)
	stream := pool.Execute(cases)
	<-started
	pool.Stop()
	close(release)
	results := collect(t, stream)

	require.Len(t, results, 1, "in-flight work finishes, nothing new starts")
	assert.Equal(t, domain.OutcomePass, results["t1"].Outcome)
	assert.Equal(t, []domain.TestID{"t2"}, pool.NotRun())
}

func TestPool_WorkingDirectoryAnomaly(t *testing.T) {
	original, err := os.Getwd()
	require.NoError(t, err)
	elsewhere := t.TempDir()

	var observed string
	cases := []Case{
		{ID: "pkg.a.test_leaks_cwd", Body: func(*T) {
			_ = os.Chdir(elsewhere)
		}},
		{ID: "pkg.a.test_next", Body: func(*T) {
			observed, _ = os.Getwd()
		}},
	}
	pool := NewPool(1, false)
	results := collect(t, pool.Execute(cases))

	leaked := results["pkg.a.test_leaks_cwd"]
	assert.True(t, leaked.CwdChanged, "leaked chdir is flagged as an anomaly")
	assert.Equal(t, original, leaked.CwdBefore)
	assert.NotEqual(t, leaked.CwdBefore, leaked.CwdAfter)
	assert.Equal(t, domain.OutcomePass, leaked.Outcome, "the anomaly is not itself a failure")

	assert.Equal(t, original, observed, "worker restores the directory before its next test")
	assert.False(t, results["pkg.a.test_next"].CwdChanged)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, original, cwd)
}

func TestPool_SubTestsShareTheWorkerSlot(t *testing.T) {
	cases := []Case{
		{ID: "pkg.a.TestA.test_params", Body: func(t *T) {
			t.Run("case_1", func(*T) {})
			t.Run("case_2", func(st *T) { st.Errorf("bad input") })
			t.Run("case_3", func(st *T) { st.Skip("unsupported") })
		}},
	}
	pool := NewPool(4, false)
	var ids []string
	byID := make(map[domain.TestID]domain.Result)
	for res := range pool.Execute(cases) {
		ids = append(ids, string(res.ID))
		byID[res.ID] = res
	}
	sort.Strings(ids)

	require.Len(t, byID, 4, "one result per sub-test plus the synthesizing parent")
	assert.Equal(t, domain.OutcomePass, byID["pkg.a.TestA.test_params/case_1"].Outcome)
	assert.Equal(t, domain.OutcomeFail, byID["pkg.a.TestA.test_params/case_2"].Outcome)
	assert.Equal(t, domain.OutcomeSkip, byID["pkg.a.TestA.test_params/case_3"].Outcome)
	assert.Equal(t, domain.OutcomeFail, byID["pkg.a.TestA.test_params"].Outcome,
		"parent synthesizes the worst sub-test outcome")
}

func TestPool_DispatchCallback(t *testing.T) {
	cases := []Case{
		{ID: "t1", Body: passing},
		{ID: "t2", Body: passing},
	}
	pool := NewPool(1, false)
	var dispatched []domain.TestID
	pool.OnDispatch = func(id domain.TestID) {
		dispatched = append(dispatched, id)
	}
	collect(t, pool.Execute(cases))

	assert.Equal(t, []domain.TestID{"t1", "t2"}, dispatched, "single worker dispatches in plan order")
}

func TestPool_OutputIsCapturedPerTest(t *testing.T) {
	cases := []Case{
		{ID: "t1", Body: func(t *T) { t.Logf("hello from %s", "t1") }},
	}
	pool := NewPool(1, false)
	results := collect(t, pool.Execute(cases))
	assert.Equal(t, "hello from t1\n", results["t1"].Output)
}
