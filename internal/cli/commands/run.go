package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hunit/internal/cli"
	"hunit/internal/config"
	"hunit/internal/discovery"
	"hunit/internal/domain"
	"hunit/internal/execution"
	"hunit/internal/history"
	"hunit/internal/plan"
	"hunit/internal/report"
	"hunit/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	discoverer discovery.Discoverer
	flags      *cli.Flags
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(disc discovery.Discoverer, flags *cli.Flags) *RunCommand {
	return &RunCommand{discoverer: disc, flags: flags}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rc.flags.ToConfigFlags())
	if err != nil {
		return configError(err)
	}
	ruleset, err := cfg.RuleSet(rc.flags.Rules.Rules())
	if err != nil {
		return configError(err)
	}
	order := plan.Order(cfg.Order)
	if !order.Valid() {
		return configError(fmt.Errorf("unknown order %q (want history or discovery)", cfg.Order))
	}

	store := history.NewStore(cfg.HistoryPath())
	previous, err := store.Load()
	if err != nil {
		return configError(err)
	}

	// Discovery happens once per run, before filtering.
	cases := rc.discoverer.Discover(args)
	byID := make(map[domain.TestID]execution.Case, len(cases))
	ids := make([]domain.TestID, 0, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	included := ruleset.Apply(ids)
	if rc.flags.OnlyFailed {
		included = plan.OnlyFailed(included, previous)
	}
	planned := plan.Build(included, previous, order)
	if len(planned) == 0 {
		if !rc.flags.Quiet {
			color.Yellow("No tests to execute")
		}
		return nil
	}
	ordered := make([]execution.Case, len(planned))
	for i, id := range planned {
		ordered[i] = byID[id]
	}

	failLog := report.NewFailureLog(cfg.FailureLogPath())
	var sink report.EventSink = report.NopSink{}
	var bar *ui.ProgressBar
	if !rc.flags.Quiet {
		bar = ui.NewProgressBar(len(planned))
		sink = report.SinkFunc(func(e domain.Event) {
			if e.Kind == domain.EventProgress {
				bar.Update(e.Snapshot)
			}
		})
	}

	pool := execution.NewPool(cfg.Jobs, cfg.FailFast)
	agg := report.NewAggregator(len(planned), sink, failLog)
	pool.OnDispatch = agg.TestStarted

	var stop func()
	if cfg.FailFast {
		stop = pool.Stop
	}
	start := time.Now()
	agg.Start()
	agg.Consume(pool.Execute(ordered), stop)
	elapsed := time.Since(start)
	notRun := pool.NotRun()
	record, delta := agg.Finalize(previous, notRun)
	if bar != nil {
		bar.Finish()
	}

	// The run's results are reported even when persistence fails; the
	// failed commit still makes the run fatal at the very end.
	saveErr := store.Save(record)

	if !rc.flags.Quiet {
		formatter := ui.NewFormatter()
		results := agg.Results()
		formatter.PrintFailures(results)
		formatter.PrintAnomalies(results)
		formatter.PrintSummary(agg.Snapshot(), elapsed, agg.Success())
		formatter.PrintDelta(delta, notRun)
		if logErr := agg.LogError(); logErr != nil {
			fmt.Fprintf(os.Stderr, "%s could not write failure log: %v\n", color.YellowString("warning:"), logErr)
		}
		if saveErr != nil {
			fmt.Fprintf(os.Stderr, "%s run results were not persisted; the next run cannot be compared: %v\n",
				color.RedString("error:"), saveErr)
		}
	}
	if saveErr != nil {
		return &ExitError{Code: ExitConfigError, Err: saveErr}
	}
	if !agg.Success() {
		return &ExitError{Code: ExitRunFailed}
	}
	return nil
}
