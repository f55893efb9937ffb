// Package commands wires the driver's components behind the cobra commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hunit/internal/cli"
	"hunit/internal/discovery"
	"hunit/internal/filter"
)

// Exit codes of the driver process.
const (
	ExitOK          = 0
	ExitRunFailed   = 1
	ExitConfigError = 2
)

// ExitError carries the process exit status up to main. In quiet mode the
// status is the only signal, so the error text may be empty.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	return &ExitError{Code: ExitConfigError, Err: err}
}

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
	Diff     *DiffCommand
}

// NewCommands creates all commands over the given test discoverer.
func NewCommands(disc discovery.Discoverer, flags *cli.Flags) *Commands {
	return &Commands{
		Run:      NewRunCommand(disc, flags),
		List:     NewListCommand(disc, flags),
		Failures: NewFailuresCommand(flags),
		Diff:     NewDiffCommand(flags),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	runCmd := &cobra.Command{
		Use:   "run [scope...]",
		Short: "Run tests in parallel",
		Long:  "Discover, filter and execute tests using parallel workers, then diff the outcome against the previous run",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().IntVarP(&flags.Jobs, "jobs", "j", 0, "Number of parallel workers (default: available parallelism)")
	runCmd.Flags().BoolVarP(&flags.FailFast, "fail-fast", "f", false, "Stop dispatching after the first failure; running tests finish")
	runCmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Print nothing; the exit status is the outcome")
	runCmd.Flags().StringVar(&flags.Order, "order", "", "Plan order seed: history or discovery (default history)")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the previous run")
	runCmd.Flags().VarP(flags.Rules.Value(filter.Include), "include", "i", "Add an include filter pattern (anchored glob; ordered, last match wins)")
	runCmd.Flags().VarP(flags.Rules.Value(filter.Exclude), "exclude", "e", "Add an exclude filter pattern (anchored glob; ordered, last match wins)")
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list [scope...]",
		Short: "List discovered tests",
		Long:  "Discover and list test ids without executing them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().VarP(flags.Rules.Value(filter.Include), "include", "i", "Add an include filter pattern")
	listCmd.Flags().VarP(flags.Rules.Value(filter.Exclude), "exclude", "e", "Add an exclude filter pattern")
	rootCmd.AddCommand(listCmd)

	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View logged test failures interactively",
		Long:  "Browse the durable failure log from past runs in an interactive viewer",
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the two most recent runs",
		Long:  "Print the fixed/broken/new/removed delta between the two most recent recorded runs",
		RunE:  c.Diff.Execute,
	}
	rootCmd.AddCommand(diffCmd)
}
