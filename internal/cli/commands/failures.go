package commands

import (
	"github.com/spf13/cobra"

	"hunit/internal/cli"
	"hunit/internal/config"
	"hunit/internal/report"
	"hunit/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	flags *cli.Flags
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(flags *cli.Flags) *FailuresCommand {
	return &FailuresCommand{flags: flags}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(fc.flags.ToConfigFlags())
	if err != nil {
		return configError(err)
	}
	log := report.NewFailureLog(cfg.FailureLogPath())
	return ui.NewFailureViewer(log).View()
}
