package config

// Config represents the complete gpuprobe configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Report  ReportConfig  `yaml:"report"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File receives JSON log events; empty disables logging.
	File string `yaml:"file"`
}

// ReportConfig controls the detailed device report
type ReportConfig struct {
	SavePath string `yaml:"save_path"`
}

// WatchConfig controls the interactive watch view
type WatchConfig struct {
	RefreshSeconds int `yaml:"refresh_seconds"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
