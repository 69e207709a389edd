package config

import (
	"fmt"
	"strings"

	"github.com/bnema/pagekit/internal/logging"
)

const maxExportSize = 512

// validateConfig collects every invalid value into one error.
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateFavicon(config)...)
	validationErrors = append(validationErrors, validateDownloads(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateLogging(config *Config) []string {
	if !logging.IsValidLevel(config.Logging.Level) {
		return []string{fmt.Sprintf("logging.level must be one of trace, debug, info, warn, error (got %q)", config.Logging.Level)}
	}
	return nil
}

func validateFavicon(config *Config) []string {
	var validationErrors []string
	if config.Favicon.FetchTimeoutMs <= 0 {
		validationErrors = append(validationErrors, "favicon.fetch_timeout_ms must be positive")
	}
	if config.Favicon.MaxIconBytes <= 0 {
		validationErrors = append(validationErrors, "favicon.max_icon_bytes must be positive")
	}
	if config.Favicon.ExportSize < 1 || config.Favicon.ExportSize > maxExportSize {
		validationErrors = append(validationErrors, fmt.Sprintf("favicon.export_size must be between 1 and %d", maxExportSize))
	}
	return validationErrors
}

func validateDownloads(config *Config) []string {
	if config.Downloads.RequestTimeoutMs <= 0 {
		return []string{"downloads.request_timeout_ms must be positive"}
	}
	return nil
}
