package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidExtension indicates an empty or malformed extension
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidMode indicates an output mode other than append or truncate
	ErrInvalidMode = errors.New("invalid output mode")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates an unknown log format
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Validate checks that the configuration is valid and complete.
// Every problem is reported, not just the first.
func Validate(cfg *Config) error {
	return errors.Join(
		validateExtract(&cfg.Extract),
		validateOutput(&cfg.Output),
		validateWatch(&cfg.Watch),
		validateLog(&cfg.Log),
	)
}

func validateExtract(cfg *ExtractConfig) error {
	var errs []error

	for _, ext := range cfg.Extensions {
		trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if trimmed == "" || strings.ContainsAny(trimmed, `/\*`) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidExtension, ext))
		}
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	// Ignore patterns are compiled by discovery; bad ones are skipped there.
	return errors.Join(errs...)
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Mode) {
	case "append", "truncate":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'append' or 'truncate', got '%s'", ErrInvalidMode, cfg.Mode))
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'text' or 'sqlite', got '%s'", ErrInvalidFormat, cfg.Format))
	}

	return errors.Join(errs...)
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMS <= 0 {
		return fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidDebounce, cfg.DebounceMS)
	}
	return nil
}

func validateLog(cfg *LogConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: %q (valid: debug, info, warn, error)", ErrInvalidLogLevel, cfg.Level))
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: %q (valid: text, json)", ErrInvalidLogFormat, cfg.Format))
	}

	return errors.Join(errs...)
}
