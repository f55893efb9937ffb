package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hunit/internal/cli"
	"hunit/internal/config"
	"hunit/internal/discovery"
	"hunit/internal/domain"
	"hunit/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	discoverer discovery.Discoverer
	flags      *cli.Flags
}

// NewListCommand creates a new ListCommand
func NewListCommand(disc discovery.Discoverer, flags *cli.Flags) *ListCommand {
	return &ListCommand{discoverer: disc, flags: flags}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(lc.flags.ToConfigFlags())
	if err != nil {
		return configError(err)
	}
	ruleset, err := cfg.RuleSet(lc.flags.Rules.Rules())
	if err != nil {
		return configError(err)
	}

	cases := lc.discoverer.Discover(args)
	ids := make([]domain.TestID, 0, len(cases))
	for _, c := range cases {
		ids = append(ids, c.ID)
	}
	included := ruleset.Apply(ids)
	if len(included) == 0 {
		color.Yellow("no test collected")
		return nil
	}
	ui.NewFormatter().PrintList(included)
	return nil
}
