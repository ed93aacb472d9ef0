package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "backend.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidColorModes returns the list of valid report color modes
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBackend()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateReport()...)

	return errors
}

func (c *Config) validateBackend() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Backend.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.command",
			Value:   c.Backend.Command,
			Message: "primary backend command must not be empty",
		})
	}

	if c.Backend.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "backend.timeout_seconds",
			Value:   c.Backend.TimeoutSeconds,
			Message: "timeout must be positive",
		})
	}

	if c.Backend.MaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "backend.max_tokens",
			Value:   c.Backend.MaxTokens,
			Message: "max tokens must not be negative",
		})
	}

	if c.Backend.APIBaseURL != "" {
		u, err := url.Parse(c.Backend.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "backend.api_base_url",
				Value:   c.Backend.APIBaseURL,
				Message: "must be an absolute http(s) URL",
			})
		}
	}

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must be a host:port address",
		})
	}

	if c.Server.ShutdownGraceSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.shutdown_grace_seconds",
			Value:   c.Server.ShutdownGraceSeconds,
			Message: "shutdown grace must not be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "max size must not be negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "max backups must not be negative",
		})
	}

	return errors
}

func (c *Config) validateReport() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidColorModes(), strings.ToLower(c.Report.Color)) {
		errors = append(errors, ValidationError{
			Field:   "report.color",
			Value:   c.Report.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}
