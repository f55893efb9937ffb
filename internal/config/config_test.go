package config

import (
	"os"
	"path/filepath"
	"testing"

	"hunit/internal/domain"
	"hunit/internal/filter"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.ProjectPath != "." {
		t.Errorf("expected project path '.', got %s", cfg.ProjectPath)
	}
	if cfg.StateDir != ".hunit" {
		t.Errorf("expected state dir '.hunit', got %s", cfg.StateDir)
	}
	if cfg.Jobs != 0 {
		t.Errorf("expected jobs 0 (host parallelism), got %d", cfg.Jobs)
	}
	if cfg.Order != "history" {
		t.Errorf("expected order 'history', got %s", cfg.Order)
	}
	if cfg.FailFast {
		t.Error("expected fail-fast off by default")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	content := `jobs: 4
order: discovery
fail_fast: true
state_dir: .state
filter:
  rules:
    - exclude: "pkg.slow"
    - include: "pkg.slow.critical"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := New()
	if err := cfg.loadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Jobs != 4 {
		t.Errorf("expected jobs 4, got %d", cfg.Jobs)
	}
	if cfg.Order != "discovery" {
		t.Errorf("expected order 'discovery', got %s", cfg.Order)
	}
	if !cfg.FailFast {
		t.Error("expected fail-fast on")
	}
	if cfg.StateDir != ".state" {
		t.Errorf("expected state dir '.state', got %s", cfg.StateDir)
	}
	if len(cfg.FileRules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(cfg.FileRules))
	}
	if cfg.FileRules[0].Verdict != "exclude" || cfg.FileRules[0].Pattern != "pkg.slow" {
		t.Errorf("unexpected first rule: %+v", cfg.FileRules[0])
	}
	if cfg.FileRules[1].Verdict != "include" || cfg.FileRules[1].Pattern != "pkg.slow.critical" {
		t.Errorf("unexpected second rule: %+v", cfg.FileRules[1])
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := New()
	if err := cfg.loadFile(filepath.Join(t.TempDir(), DefaultConfigFile)); err != nil {
		t.Fatalf("a missing config file is not an error: %v", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "jobs: [unclosed"},
		{"unknown verdict", "filter:\n  rules:\n    - keep: \"pkg.a\"\n"},
		{"unknown default", "filter:\n  default: maybe\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFile)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if err := New().loadFile(path); err == nil {
				t.Error("expected a configuration error")
			}
		})
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("HUNIT_JOBS", "8")
	t.Setenv("HUNIT_ORDER", "discovery")
	t.Setenv("HUNIT_STATE_DIR", "/tmp/hunit-state")

	cfg := New()
	cfg.ProjectPath = t.TempDir()
	if err := cfg.loadEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Jobs != 8 {
		t.Errorf("expected jobs 8, got %d", cfg.Jobs)
	}
	if cfg.Order != "discovery" {
		t.Errorf("expected order 'discovery', got %s", cfg.Order)
	}
	if cfg.StateDir != "/tmp/hunit-state" {
		t.Errorf("expected state dir '/tmp/hunit-state', got %s", cfg.StateDir)
	}
}

func TestLoadEnv_BadJobs(t *testing.T) {
	t.Setenv("HUNIT_JOBS", "many")
	cfg := New()
	cfg.ProjectPath = t.TempDir()
	if err := cfg.loadEnv(); err == nil {
		t.Error("expected a configuration error")
	}
}

func TestRuleSet_DefaultVerdict(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		rules    []filter.Rule
		id       string
		included bool
	}{
		{
			name:     "no rules includes everything",
			id:       "pkg.a.test_x",
			included: true,
		},
		{
			name:     "an include rule flips the default to exclude",
			rules:    []filter.Rule{{Pattern: "pkg.a", Verdict: filter.Include}},
			id:       "pkg.b.test_x",
			included: false,
		},
		{
			name:     "exclude rules alone keep the include default",
			rules:    []filter.Rule{{Pattern: "pkg.a", Verdict: filter.Exclude}},
			id:       "pkg.b.test_x",
			included: true,
		},
		{
			name:     "explicit include default wins over the heuristic",
			explicit: "include",
			rules:    []filter.Rule{{Pattern: "pkg.a", Verdict: filter.Include}},
			id:       "pkg.b.test_x",
			included: true,
		},
		{
			name:     "explicit exclude default",
			explicit: "exclude",
			id:       "pkg.a.test_x",
			included: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.DefaultVerdict = tt.explicit
			rs, err := cfg.RuleSet(tt.rules)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := rs.Included(domain.TestID(tt.id)); got != tt.included {
				t.Errorf("Included(%s) = %v, expected %v", tt.id, got, tt.included)
			}
		})
	}
}

func TestRuleSet_FileRulesPrecedeCLIRules(t *testing.T) {
	cfg := New()
	cfg.FileRules = []FileRule{{Verdict: "exclude", Pattern: "pkg.a"}}
	rs, err := cfg.RuleSet([]filter.Rule{{Pattern: "pkg.a", Verdict: filter.Include}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rs.Included("pkg.a.test_x") {
		t.Error("the CLI rule comes later and wins under last-match-wins")
	}
}

func TestStatePaths(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = t.TempDir()
	cfg.StateDir = ".hunit"

	history := cfg.HistoryPath()
	if !filepath.IsAbs(history) {
		t.Errorf("expected an absolute history path, got %s", history)
	}
	if filepath.Base(history) != DefaultHistoryFile {
		t.Errorf("expected history file %s, got %s", DefaultHistoryFile, filepath.Base(history))
	}
	if filepath.Base(cfg.FailureLogPath()) != DefaultFailureLogFile {
		t.Errorf("unexpected failure log path %s", cfg.FailureLogPath())
	}
}
