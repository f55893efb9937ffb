// Package config holds all configuration for the driver: defaults, the
// optional .hunit.yml file, .env overrides and command-line flags, applied
// in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hunit/internal/filter"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	StateDir    string

	// Execution settings
	Jobs     int
	FailFast bool
	Order    string

	// Filter rules from the config file, in declaration order. CLI rules are
	// appended after these, so the command line wins under last-match-wins.
	FileRules      []FileRule
	DefaultVerdict string // "", "include" or "exclude"

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Jobs       int
	FailFast   bool
	Quiet      bool
	Order      string
	OnlyFailed bool
}

// FileRule is one ordered filter rule from the YAML file, written as a
// single-key mapping: `- exclude: "pkg.slow"` or `- include: "pkg.slow.critical"`.
type FileRule struct {
	Verdict string
	Pattern string
}

func (r *FileRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("filter rule must be a single include/exclude mapping")
	}
	verdict := node.Content[0].Value
	if verdict != "include" && verdict != "exclude" {
		return fmt.Errorf("unknown filter verdict %q", verdict)
	}
	r.Verdict = verdict
	r.Pattern = node.Content[1].Value
	return nil
}

type fileConfig struct {
	Jobs     int    `yaml:"jobs"`
	Order    string `yaml:"order"`
	StateDir string `yaml:"state_dir"`
	FailFast bool   `yaml:"fail_fast"`
	Filter   struct {
		Default string     `yaml:"default"`
		Rules   []FileRule `yaml:"rules"`
	} `yaml:"filter"`
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		ProjectPath: DefaultProjectPath,
		StateDir:    DefaultStateDir,
		Jobs:        DefaultJobs,
		Order:       DefaultOrder,
	}
}

// Load creates a config from defaults, the optional config file, the
// optional .env file and finally the given flags. A malformed file is a
// configuration error reported before anything runs.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.loadFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile)); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	cfg.Flags = flags
	if flags.Jobs > 0 {
		cfg.Jobs = flags.Jobs
	}
	if flags.FailFast {
		cfg.FailFast = true
	}
	if flags.Order != "" {
		cfg.Order = flags.Order
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if file.Jobs > 0 {
		c.Jobs = file.Jobs
	}
	if file.Order != "" {
		c.Order = file.Order
	}
	if file.StateDir != "" {
		c.StateDir = file.StateDir
	}
	if file.FailFast {
		c.FailFast = true
	}
	if file.Filter.Default != "" {
		if file.Filter.Default != "include" && file.Filter.Default != "exclude" {
			return fmt.Errorf("config file %s: unknown filter default %q", path, file.Filter.Default)
		}
		c.DefaultVerdict = file.Filter.Default
	}
	c.FileRules = file.Filter.Rules
	return nil
}

// loadEnv applies HUNIT_* overrides, loading an optional .env file first.
func (c *Config) loadEnv() error {
	envPath := filepath.Join(c.ProjectPath, DefaultEnvFile)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
	}
	if v := os.Getenv("HUNIT_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HUNIT_JOBS must be an integer, got %q", v)
		}
		c.Jobs = n
	}
	if v := os.Getenv("HUNIT_ORDER"); v != "" {
		c.Order = v
	}
	if v := os.Getenv("HUNIT_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	return nil
}

// HistoryPath returns the run history store location, resolved to an
// absolute path so every command reads the same file regardless of cwd.
func (c *Config) HistoryPath() string {
	return c.statePath(DefaultHistoryFile)
}

// FailureLogPath returns the durable failure log location.
func (c *Config) FailureLogPath() string {
	return c.statePath(DefaultFailureLogFile)
}

func (c *Config) statePath(name string) string {
	p := filepath.Join(c.ProjectPath, c.StateDir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// RuleSet compiles the file rules plus the given CLI rules, in that order,
// into a validated ruleset. Unless overridden, the default verdict is
// exclude as soon as any include rule exists (so "-i foo" means "only foo")
// and include otherwise.
func (c *Config) RuleSet(cliRules []filter.Rule) (*filter.RuleSet, error) {
	var rules []filter.Rule
	for _, fr := range c.FileRules {
		v := filter.Include
		if fr.Verdict == "exclude" {
			v = filter.Exclude
		}
		rules = append(rules, filter.Rule{Pattern: fr.Pattern, Verdict: v})
	}
	rules = append(rules, cliRules...)

	def := filter.Include
	switch c.DefaultVerdict {
	case "exclude":
		def = filter.Exclude
	case "include", "":
		if c.DefaultVerdict == "" {
			for _, r := range rules {
				if r.Verdict == filter.Include {
					def = filter.Exclude
					break
				}
			}
		}
	}
	return filter.NewRuleSet(rules, def)
}
