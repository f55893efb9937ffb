package filter

import (
	"testing"

	"hunit/internal/domain"
)

func ids(ss ...string) []domain.TestID {
	out := make([]domain.TestID, len(ss))
	for i, s := range ss {
		out[i] = domain.TestID(s)
	}
	return out
}

func TestRuleSet_Apply(t *testing.T) {
	tests := []struct {
		name     string
		rules    []Rule
		def      Verdict
		input    []domain.TestID
		expected []domain.TestID
	}{
		{
			name:     "no rules include default keeps everything",
			rules:    nil,
			def:      Include,
			input:    ids("pkg.a.TestA.test_x", "pkg.b.TestB.test_y"),
			expected: ids("pkg.a.TestA.test_x", "pkg.b.TestB.test_y"),
		},
		{
			name:     "exclude subtree",
			rules:    []Rule{{Pattern: "pkg.slow", Verdict: Exclude}},
			def:      Include,
			input:    ids("pkg.slow.TestA.test_x", "pkg.fast.TestB.test_y"),
			expected: ids("pkg.fast.TestB.test_y"),
		},
		{
			name: "later include re-opens part of an excluded subtree",
			rules: []Rule{
				{Pattern: "pkg.slow", Verdict: Exclude},
				{Pattern: "pkg.slow.critical", Verdict: Include},
			},
			def:      Include,
			input:    ids("pkg.slow.TestA.test_x", "pkg.slow.critical.TestB.test_y", "pkg.fast.TestC.test_z"),
			expected: ids("pkg.slow.critical.TestB.test_y", "pkg.fast.TestC.test_z"),
		},
		{
			name: "last match wins on identical patterns",
			rules: []Rule{
				{Pattern: "pkg.a.*", Verdict: Exclude},
				{Pattern: "pkg.a.*", Verdict: Include},
			},
			def:      Exclude,
			input:    ids("pkg.a.TestA.test_x"),
			expected: ids("pkg.a.TestA.test_x"),
		},
		{
			name:     "anchored match does not bleed into sibling prefixes",
			rules:    []Rule{{Pattern: "pkg.mod", Verdict: Exclude}},
			def:      Include,
			input:    ids("pkg.mod.TestA.test_x", "pkg.modx.TestB.test_y"),
			expected: ids("pkg.modx.TestB.test_y"),
		},
		{
			name:     "glob wildcard over full id",
			rules:    []Rule{{Pattern: "*.test_slow", Verdict: Exclude}},
			def:      Include,
			input:    ids("pkg.a.TestA.test_slow", "pkg.a.TestA.test_fast"),
			expected: ids("pkg.a.TestA.test_fast"),
		},
		{
			name:     "exclude default drops unmatched ids",
			rules:    []Rule{{Pattern: "pkg.a", Verdict: Include}},
			def:      Exclude,
			input:    ids("pkg.a.TestA.test_x", "pkg.b.TestB.test_y"),
			expected: ids("pkg.a.TestA.test_x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := NewRuleSet(tt.rules, tt.def)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := rs.Apply(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestRuleSet_ApplyIsIdempotent(t *testing.T) {
	rs, err := NewRuleSet([]Rule{{Pattern: "pkg.slow", Verdict: Exclude}}, Include)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input := ids("pkg.slow.TestA.test_x", "pkg.fast.TestB.test_y", "pkg.fast.TestC.test_z")
	once := rs.Apply(input)
	twice := rs.Apply(once)
	if len(once) != len(twice) {
		t.Fatalf("second application changed the result: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("position %d: %s vs %s", i, once[i], twice[i])
		}
	}
}

func TestNewRuleSet_MalformedPattern(t *testing.T) {
	_, err := NewRuleSet([]Rule{{Pattern: "pkg.[", Verdict: Exclude}}, Include)
	if err == nil {
		t.Fatal("expected a configuration error for a malformed pattern")
	}
}

func TestNewRuleSet_EmptyPattern(t *testing.T) {
	_, err := NewRuleSet([]Rule{{Pattern: "", Verdict: Include}}, Include)
	if err == nil {
		t.Fatal("expected a configuration error for an empty pattern")
	}
}
