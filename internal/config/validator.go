package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"
)

var (
	validLogFormats = []string{"json", "console"}
	validLogOutputs = []string{"stdout", "stderr"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks cfg and returns ValidationErrors listing every problem,
// or nil.
func Validate(cfg *Config) error {
	var errs ValidationErrors
	add := func(path, format string, args ...any) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if cfg == nil {
		add("", "configuration is nil")
		return errs
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level", "invalid log level %q", cfg.Log.Level)
	}
	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		add("log.format", "must be one of %v, got %q", validLogFormats, cfg.Log.Format)
	}
	if !slices.Contains(validLogOutputs, cfg.Log.Output) {
		add("log.output", "must be one of %v, got %q", validLogOutputs, cfg.Log.Output)
	}

	if cfg.KeySet.Debounce < 0 {
		add("keySet.debounce", "must not be negative")
	}
	if cfg.KeySet.Watch && cfg.KeySet.Path == "" {
		add("keySet.path", "is required when watch is enabled")
	}

	if cfg.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Address); err != nil {
			add("metrics.address", "invalid listen address %q", cfg.Metrics.Address)
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			add("metrics.path", "must start with '/'")
		}
	}

	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		add("tracing.samplingRate", "must be between 0 and 1, got %v", cfg.Tracing.SamplingRate)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
