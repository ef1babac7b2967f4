package config

import (
	"fmt"
	"strings"
)

const maxRefreshSeconds = 3600

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateWatch()...)

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	validLevels := []string{"debug", "info", "warn", "error"}
	if contains(validLevels, c.Logging.Level) {
		return nil
	}

	return []ValidationError{{
		Path:    "logging.level",
		Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.Logging.Level),
	}}
}

func (c *Config) validateReport() []ValidationError {
	if strings.TrimSpace(c.Report.SavePath) != "" {
		return nil
	}

	return []ValidationError{{
		Path:    "report.save_path",
		Message: "must not be empty",
	}}
}

func (c *Config) validateWatch() []ValidationError {
	if c.Watch.RefreshSeconds >= 1 && c.Watch.RefreshSeconds <= maxRefreshSeconds {
		return nil
	}

	return []ValidationError{{
		Path:    "watch.refresh_seconds",
		Message: fmt.Sprintf("must be between 1 and %d, got %d", maxRefreshSeconds, c.Watch.RefreshSeconds),
	}}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
