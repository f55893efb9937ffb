// Package hunit is an enhanced driver for large unit-test suites:
// incremental progress reporting, fast feedback on failures, selective
// re-runs and historical comparison between runs.
//
// Test units are compiled into the driver binary. Packages register their
// tests against a Registry, typically from an init function:
//
//	var m = hunit.Register.Module("pkg.math")
//
//	func init() {
//		m.Add("test_add", func(t *hunit.T) {
//			if 1+1 != 2 {
//				t.Errorf("arithmetic is broken")
//			}
//		})
//	}
//
// and the binary's main hands control to Main.
package hunit

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hunit/internal/cli"
	"hunit/internal/cli/commands"
	"hunit/internal/discovery"
	"hunit/internal/domain"
	"hunit/internal/execution"
	"hunit/internal/report"
)

// T is the capability handed to every test body.
type T = execution.T

// Case couples a test id with its executable unit.
type Case = execution.Case

// Outcome is the final status of one executed test unit.
type Outcome = domain.Outcome

// Registry enumerates registered test modules.
type Registry = discovery.Registry

// Module groups test cases under a common id prefix.
type Module = discovery.Module

// Event types of the structured reporting stream, for custom sinks.
type (
	Event     = domain.Event
	EventSink = report.EventSink
	SinkFunc  = report.SinkFunc
)

// Register is the default registry driven by Main.
var Register = discovery.NewRegistry()

var version = "dev"

// NewRootCommand builds the driver's command tree over reg.
func NewRootCommand(reg *Registry) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hunit",
		Short:         "Interactive parallel unit-test driver",
		Long:          `An enhanced unit-test driver. Run large test suites in parallel with live progress, re-run what broke first, and compare each run against the previous one.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var flags cli.Flags
	cmds := commands.NewCommands(reg, &flags)
	cmds.Register(rootCmd, &flags)
	return rootCmd
}

// Main runs the driver over reg and returns the process exit code.
func Main(reg *Registry) int {
	if err := NewRootCommand(reg).Execute(); err != nil {
		var xerr *commands.ExitError
		if errors.As(err, &xerr) {
			if xerr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", xerr.Err)
			}
			return xerr.Code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitConfigError
	}
	return commands.ExitOK
}
