package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks network failures that were retried and may succeed later.
	ErrTransient = errors.New("transient failure")
	// ErrSemanticRejection marks upstream validation failures that must not be retried.
	ErrSemanticRejection = errors.New("semantic rejection")
	// ErrNotFound marks a registry record that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrNoTranslatableName marks a record with no target-script candidate name.
	ErrNoTranslatableName = errors.New("no translatable name")
	// ErrNoChangeNeeded marks a record already at its fixed point.
	ErrNoChangeNeeded = errors.New("no change needed")
	// ErrConfiguration marks fatal misconfiguration (for example a missing registry).
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
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

// Outcome buckets a per-record result for run counters.
type Outcome string

const (
	OutcomeUpdated          Outcome = "updated"
	OutcomeSkippedNoAlias   Outcome = "skipped_no_alias"
	OutcomeSkippedNoChange  Outcome = "skipped_no_change"
	OutcomeSkippedMultiID   Outcome = "skipped_multi_id"
	OutcomeSkippedNotLinked Outcome = "skipped_not_linked"
	OutcomeError            Outcome = "error"
)

// Classify maps a per-record error to the counter it belongs to. A nil error is
// an update; skip markers are never counted as errors.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeUpdated
	case errors.Is(err, ErrNoTranslatableName):
		return OutcomeSkippedNoAlias
	case errors.Is(err, ErrNoChangeNeeded):
		return OutcomeSkippedNoChange
	default:
		return OutcomeError
	}
}

// IsSkip reports whether err is a skip outcome rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNoTranslatableName) || errors.Is(err, ErrNoChangeNeeded)
}

// IsRetryable reports whether a failed call may be attempted again.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrSemanticRejection) || errors.Is(err, ErrNotFound) {
		return false
	}
	return errors.Is(err, ErrTransient)
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
