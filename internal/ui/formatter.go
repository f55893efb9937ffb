package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"

	"hunit/internal/domain"
)

var statusColors = map[domain.Outcome]*color.Color{
	domain.OutcomePass:              color.New(color.FgGreen),
	domain.OutcomeFail:              color.New(color.FgRed),
	domain.OutcomeError:             color.New(color.FgMagenta),
	domain.OutcomeSkip:              color.New(color.FgBlue),
	domain.OutcomeExpectedFailure:   color.New(color.FgCyan),
	domain.OutcomeUnexpectedSuccess: color.New(color.FgYellow),
}

var changeColors = map[domain.Change]*color.Color{
	domain.ChangeFixed:    color.New(color.FgGreen),
	domain.ChangeBroken:   color.New(color.FgRed),
	domain.ChangeNew:      color.New(color.FgCyan),
	domain.ChangeRemoved:  color.New(color.FgYellow),
	domain.ChangeStillBad: color.New(color.FgMagenta),
}

// Formatter writes the end-of-run report.
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a Formatter writing to stdout.
func NewFormatter() *Formatter {
	return &Formatter{out: os.Stdout}
}

// NewFormatterTo creates a Formatter writing to w.
func NewFormatterTo(w io.Writer) *Formatter {
	return &Formatter{out: w}
}

// PrintSummary prints the one-line run verdict with per-status counters.
func (f *Formatter) PrintSummary(snap domain.Snapshot, elapsed time.Duration, success bool) {
	verdict := color.GreenString("Run")
	if !success {
		verdict = color.RedString("Run")
	}
	fmt.Fprintf(f.out, "%s %d tests in %s:", verdict, snap.Run, elapsed.Round(time.Millisecond))
	for _, status := range domain.AllOutcomes {
		fmt.Fprintf(f.out, " %s %s",
			statusColors[status].Sprintf("%d", snap.Counts[status]),
			string(status))
	}
	fmt.Fprintln(f.out)
}

// PrintFailures prints the detail of every failing result.
func (f *Formatter) PrintFailures(results []domain.Result) {
	for _, res := range results {
		if !res.Outcome.Bad() && res.Outcome != domain.OutcomeUnexpectedSuccess {
			continue
		}
		header := fmt.Sprintf("%s: %s", statusColors[res.Outcome].Sprint(string(res.Outcome)), res.ID)
		hbar := len(string(res.ID)) + len(string(res.Outcome)) + 2
		fmt.Fprintln(f.out, dashes(hbar))
		fmt.Fprintln(f.out, header)
		fmt.Fprintln(f.out, dashes(hbar))
		if res.Detail != "" {
			fmt.Fprintln(f.out, res.Detail)
		}
		if res.Output != "" {
			fmt.Fprintln(f.out, dashes(hbar/2), "OUTPUT", dashes(hbar/2))
			fmt.Fprint(f.out, res.Output)
		}
	}
}

// PrintAnomalies warns about tests that leaked a working-directory change.
func (f *Formatter) PrintAnomalies(results []domain.Result) {
	for _, res := range results {
		if res.CwdChanged {
			fmt.Fprintf(f.out, "%s %s changed the working directory (%s -> %s); restored\n",
				color.YellowString("warning:"), res.ID, res.CwdBefore, res.CwdAfter)
		}
	}
}

// PrintDelta prints the comparison against the previous run, the headline
// signal after a re-run.
func (f *Formatter) PrintDelta(delta *domain.Delta, notRun []domain.TestID) {
	order := []domain.Change{
		domain.ChangeFixed,
		domain.ChangeBroken,
		domain.ChangeNew,
		domain.ChangeRemoved,
		domain.ChangeStillBad,
	}
	any := false
	for _, change := range order {
		ids := delta.IDs(change)
		if len(ids) == 0 {
			continue
		}
		any = true
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		fmt.Fprintf(f.out, "%s (%d):\n", changeColors[change].Sprint(string(change)), len(ids))
		for _, id := range ids {
			fmt.Fprintf(f.out, "  %s\n", id)
		}
	}
	if !any {
		fmt.Fprintln(f.out, "no changes since previous run")
	}
	if len(notRun) > 0 {
		fmt.Fprintf(f.out, "%s (%d):\n", color.YellowString("not run"), len(notRun))
		for _, id := range notRun {
			fmt.Fprintf(f.out, "  %s\n", id)
		}
	}
}

// PrintList prints discovered test ids, one per line.
func (f *Formatter) PrintList(ids []domain.TestID) {
	for _, id := range ids {
		fmt.Fprintln(f.out, id)
	}
	fmt.Fprintf(f.out, "collected %d test(s)\n", len(ids))
}

func dashes(n int) string {
	if n < 4 {
		n = 4
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
