package services

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	stageKey
	performerIDKey
)

// withValue returns ctx unchanged for a blank value so an outer annotation
// stays visible.
func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func valueFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, runIDKey)
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, stageKey)
}

// WithPerformerID annotates context with the local performer identifier.
func WithPerformerID(ctx context.Context, id string) context.Context {
	return withValue(ctx, performerIDKey, id)
}

// PerformerIDFromContext extracts the performer identifier if present.
func PerformerIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, performerIDKey)
}
