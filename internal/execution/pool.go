// Package execution schedules planned test units onto a bounded worker pool
// and streams back one Result per unit, in completion order.
package execution

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"hunit/internal/domain"
)

// Pool executes an ordered plan of Cases with bounded concurrency. Each
// worker is strictly sequential: one test at a time, no nested concurrency
// within a single unit. Results arrive in completion order, which must not be
// relied upon for anything except live progress.
type Pool struct {
	workers  int
	failFast bool

	// OnDispatch, when set, is invoked from the worker right before a unit
	// starts executing. Set it before calling Execute.
	OnDispatch func(domain.TestID)

	mu      sync.Mutex
	stopped bool
	skipped map[domain.TestID]struct{}
	planned []Case
}

// NewPool returns a pool of n workers; n <= 0 means available parallelism.
func NewPool(n int, failFast bool) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &Pool{
		workers:  n,
		failFast: failFast,
		skipped:  make(map[domain.TestID]struct{}),
	}
}

// Execute starts the pool over the plan and returns the result stream. The
// channel closes once every dispatched unit has finished and the remaining
// plan, if any, has been drained. Execute does not block.
func (p *Pool) Execute(cases []Case) <-chan domain.Result {
	p.mu.Lock()
	p.planned = cases
	p.mu.Unlock()

	// Sub-tests emit extra results beyond one per case, so the stream buffer
	// is a floor, not a bound; deliver still hands off without blocking the
	// dispatch of other workers.
	results := make(chan domain.Result, len(cases))
	queue := make(chan Case, len(cases))
	for _, c := range cases {
		queue <- c
	}
	close(queue)

	n := p.workers
	if len(cases) < n {
		n = len(cases)
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go p.worker(queue, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// Stop closes the dispatch gate: no new unit starts, in-flight units finish,
// the stream drains and closes. Cancellation is cooperative; running tests
// are never killed mid-flight.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

// NotRun returns the planned ids that were never dispatched, in plan order.
// Only meaningful after the result stream has closed.
func (p *Pool) NotRun() []domain.TestID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []domain.TestID
	for _, c := range p.planned {
		if _, ok := p.skipped[c.ID]; ok {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// worker pulls cases in plan order until the queue drains. A worker whose
// loop dies unexpectedly is replaced so a single crashing test never takes
// the whole run down with it.
func (p *Pool) worker(queue <-chan Case, results chan<- domain.Result, wg *sync.WaitGroup) {
	defer func() {
		if r := recover(); r != nil {
			go p.worker(queue, results, wg)
			return
		}
		wg.Done()
	}()
	for c := range queue {
		if p.isStopped() {
			p.markNotRun(c.ID)
			continue
		}
		p.runCase(c, results)
	}
}

func (p *Pool) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Pool) markNotRun(id domain.TestID) {
	p.mu.Lock()
	p.skipped[id] = struct{}{}
	p.mu.Unlock()
}

// runCase executes one unit in isolation and delivers its results. The
// working directory is snapshotted around the dispatch: a leaked change is
// flagged as an anomaly and restored before the worker accepts its next
// case, since it is process-wide state that would corrupt every later test.
func (p *Pool) runCase(c Case, results chan<- domain.Result) {
	if p.OnDispatch != nil {
		p.OnDispatch(c.ID)
	}
	if c.Err != nil {
		p.deliver(domain.Result{
			ID:      c.ID,
			Outcome: domain.OutcomeError,
			Detail:  fmt.Sprintf("collection error: %v", c.Err),
		}, results)
		return
	}

	cwdBefore, _ := os.Getwd()
	t := newT(c.ID, func(sub domain.Result) {
		p.deliver(sub, results)
	})
	start := time.Now()
	crash := runBody(t, c.Body)
	res := t.finish(time.Since(start), crash)

	cwdAfter, _ := os.Getwd()
	res.CwdBefore = cwdBefore
	res.CwdAfter = cwdAfter
	if cwdAfter != cwdBefore {
		res.CwdChanged = true
		os.Chdir(cwdBefore)
	}
	p.deliver(res, results)
}

// runBody runs the unit in a fresh goroutine and waits for it. Beyond the
// panic handling shared with sub-tests, it catches a body that kills its
// execution context without completing (runtime.Goexit and friends) and
// reports it as a crash.
func runBody(t *T, body func(*T)) string {
	done := make(chan string, 1)
	go func() {
		completed := false
		crash := ""
		defer func() {
			switch r := recover(); r.(type) {
			case failNowMarker, skipMarker:
			case nil:
				if !completed {
					crash = "test unit aborted its execution context"
				}
			default:
				crash = fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
			}
			done <- crash
		}()
		body(t)
		completed = true
	}()
	return <-done
}

// deliver hands one result to the stream. Under failfast the gate is closed
// the moment a bad outcome is produced, before the result is even observed
// downstream, so no later unit can slip through on another worker.
func (p *Pool) deliver(res domain.Result, results chan<- domain.Result) {
	if p.failFast && res.Outcome.Bad() {
		p.Stop()
	}
	results <- res
}
