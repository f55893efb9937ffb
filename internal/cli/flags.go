package cli

import (
	"github.com/spf13/pflag"

	"hunit/internal/config"
	"hunit/internal/filter"
)

// Flags holds command-line flags
type Flags struct {
	Jobs       int
	FailFast   bool
	Quiet      bool
	Order      string
	OnlyFailed bool
	Rules      RuleFlags
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Jobs:       f.Jobs,
		FailFast:   f.FailFast,
		Quiet:      f.Quiet,
		Order:      f.Order,
		OnlyFailed: f.OnlyFailed,
	}
}

// RuleFlags accumulates -i/--include and -e/--exclude patterns in the order
// they appear on the command line. Order matters: the filter engine applies
// last-match-wins, so a later flag overrides an earlier one.
type RuleFlags struct {
	rules []filter.Rule
}

// Rules returns the accumulated rules in declaration order.
func (rf *RuleFlags) Rules() []filter.Rule {
	out := make([]filter.Rule, len(rf.rules))
	copy(out, rf.rules)
	return out
}

// Value returns a pflag.Value appending rules with the given verdict.
func (rf *RuleFlags) Value(verdict filter.Verdict) pflag.Value {
	return &ruleValue{dest: rf, verdict: verdict}
}

type ruleValue struct {
	dest    *RuleFlags
	verdict filter.Verdict
}

func (v *ruleValue) String() string { return "" }

func (v *ruleValue) Type() string { return "pattern" }

func (v *ruleValue) Set(s string) error {
	// Pattern validity is checked when the ruleset is compiled, before any
	// test executes.
	v.dest.rules = append(v.dest.rules, filter.Rule{Pattern: s, Verdict: v.verdict})
	return nil
}
