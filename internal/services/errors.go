package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or unusable input. Not retryable.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or inconsistent configuration. Not retryable.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing record or organization. Not retryable.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a database read/write failure. Retryable.
	ErrStorage = errors.New("storage error")
	// ErrTransient marks any other recoverable infrastructure failure. Retryable.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above; a nil marker defaults to ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a stage error should be retried with backoff.
// Unclassified errors are treated as retryable so that programming mistakes
// in classification never silently swallow recoverable failures; bounded
// attempts cap the damage either way.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
