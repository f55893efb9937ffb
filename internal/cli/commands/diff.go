package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hunit/internal/cli"
	"hunit/internal/config"
	"hunit/internal/history"
	"hunit/internal/report"
	"hunit/internal/ui"
)

// DiffCommand handles the diff command
type DiffCommand struct {
	flags *cli.Flags
}

// NewDiffCommand creates a new DiffCommand
func NewDiffCommand(flags *cli.Flags) *DiffCommand {
	return &DiffCommand{flags: flags}
}

// Execute prints the delta between the two most recent recorded runs.
func (dc *DiffCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(dc.flags.ToConfigFlags())
	if err != nil {
		return configError(err)
	}
	store := history.NewStore(cfg.HistoryPath())
	current, previous, err := store.LoadLastTwo()
	if err != nil {
		return configError(err)
	}
	if current == nil {
		color.Yellow("no run history yet")
		return nil
	}
	delta := report.Diff(previous, current)
	ui.NewFormatter().PrintDelta(delta, nil)
	return nil
}
