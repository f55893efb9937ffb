// Package filter decides which discovered test ids are eligible to run.
package filter

import (
	"fmt"
	"path"

	"hunit/internal/domain"
)

// Verdict is the decision a rule attaches to a matching test id.
type Verdict int

const (
	Include Verdict = iota
	Exclude
)

func (v Verdict) String() string {
	if v == Include {
		return "include"
	}
	return "exclude"
}

// Rule pairs a glob pattern with a verdict. Patterns are matched against the
// full test id, anchored at both ends; a rule also covers the subtree rooted
// at its pattern, so "pkg.mod" matches "pkg.mod" and "pkg.mod.TestFoo.test_x"
// but never "pkg.modx".
type Rule struct {
	Pattern string
	Verdict Verdict
}

// RuleSet is an ordered sequence of rules plus a default verdict. Rules are
// evaluated in declaration order and the last matching rule wins, so a later,
// more specific rule overrides an earlier, broader one.
type RuleSet struct {
	rules []Rule
	def   Verdict
}

// NewRuleSet validates every pattern up front and returns the compiled set.
// A malformed pattern is a configuration error: the whole evaluation fails
// before any test executes, never silently dropping tests.
func NewRuleSet(rules []Rule, def Verdict) (*RuleSet, error) {
	for _, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("filter rule pattern cannot be empty")
		}
		if _, err := path.Match(r.Pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", r.Pattern, err)
		}
	}
	rs := &RuleSet{def: def}
	rs.rules = append(rs.rules, rules...)
	return rs, nil
}

// Rules returns a copy of the rule sequence, in declaration order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Default returns the verdict applied to ids no rule matches.
func (rs *RuleSet) Default() Verdict {
	return rs.def
}

// Apply evaluates the set against ids and returns the included subset in the
// original order. It is a pure function of its inputs.
func (rs *RuleSet) Apply(ids []domain.TestID) []domain.TestID {
	var included []domain.TestID
	for _, id := range ids {
		if rs.Included(id) {
			included = append(included, id)
		}
	}
	return included
}

// Included evaluates a single id: every matching rule overwrites the running
// verdict; the verdict after the last matching rule (or the default) is final.
func (rs *RuleSet) Included(id domain.TestID) bool {
	verdict := rs.def
	for _, r := range rs.rules {
		if matches(r.Pattern, string(id)) {
			verdict = r.Verdict
		}
	}
	return verdict == Include
}

// matches reports whether the anchored glob pattern covers id, either exactly
// or as the root of a dotted subtree. Patterns were validated at construction
// so path.Match cannot fail here.
func matches(pattern, id string) bool {
	if ok, _ := path.Match(pattern, id); ok {
		return true
	}
	ok, _ := path.Match(pattern+".*", id)
	return ok
}
