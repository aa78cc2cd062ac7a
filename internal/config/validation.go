package config

import (
	"fmt"
	"strings"

	"github.com/64/kaiser/internal/logging"
	"github.com/64/kaiser/internal/score"
	"github.com/64/kaiser/internal/search"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error concerns field.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ValidateConfig checks every section and returns all problems at once.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateSearch(&c.Search)...)
	errs = append(errs, validateScore(&c.Score)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateStorage(&c.Storage)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateSearch(s *SearchConfig) ValidationErrors {
	var errs ValidationErrors

	switch s.Engine {
	case "", search.EngineBrute, search.EngineHillClimb:
	default:
		errs = append(errs, ValidationError{
			Field:   "search.engine",
			Message: fmt.Sprintf("invalid engine: %s (valid: %s, %s)", s.Engine, search.EngineBrute, search.EngineHillClimb),
		})
	}
	if s.Results < 1 {
		errs = append(errs, ValidationError{Field: "search.results", Message: "must be at least 1"})
	}
	if s.StopAfter < 1 {
		errs = append(errs, ValidationError{Field: "search.stop_after", Message: "must be at least 1"})
	}
	if s.Restarts < 0 {
		errs = append(errs, ValidationError{Field: "search.restarts", Message: "cannot be negative"})
	}
	if s.Parallel < 1 {
		errs = append(errs, ValidationError{Field: "search.parallel", Message: "must be at least 1"})
	}
	return errs
}

func validateScore(s *ScoreConfig) ValidationErrors {
	if _, err := score.ParseMethod(s.Method); err != nil {
		return ValidationErrors{{Field: "score.method", Message: err.Error()}}
	}
	return nil
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %s (valid: stdout, stderr, file, both)", l.Output),
		})
	}
	return errs
}

func validateStorage(s *StorageConfig) ValidationErrors {
	var errs ValidationErrors
	if s.Enabled && s.Path == "" {
		errs = append(errs, ValidationError{Field: "storage.path", Message: "path is required when storage is enabled"})
	}
	if s.BusyTimeoutMs < 0 {
		errs = append(errs, ValidationError{Field: "storage.busy_timeout_ms", Message: "cannot be negative"})
	}
	return errs
}
