package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultStateDir is where run history and the failure log live
	DefaultStateDir = ".hunit"
	// DefaultHistoryFile is the run history file name
	DefaultHistoryFile = "run-history.json"
	// DefaultFailureLogFile is the failure log file name
	DefaultFailureLogFile = "failures.jsonl"
	// DefaultConfigFile is the optional YAML config file name
	DefaultConfigFile = ".hunit.yml"
	// DefaultEnvFile is the optional dotenv file name
	DefaultEnvFile = ".env"
	// DefaultJobs of 0 means available host parallelism
	DefaultJobs = 0
	// DefaultOrder seeds the plan from run history
	DefaultOrder = "history"
)
