package config

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Report: ReportConfig{
			SavePath: "/tmp/gpu_report.json",
		},
		Watch: WatchConfig{
			RefreshSeconds: 2,
		},
	}
}
