package logging

import (
	"context"
	"log/slog"

	"performersync/internal/services"
)

// ContextFields returns the run, stage and performer attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, f := range []struct {
		key    string
		lookup func(context.Context) (string, bool)
	}{
		{FieldRunID, services.RunIDFromContext},
		{FieldStage, services.StageFromContext},
		{FieldPerformerID, services.PerformerIDFromContext},
	} {
		if v, ok := f.lookup(ctx); ok {
			fields = append(fields, slog.String(f.key, v))
		}
	}
	return fields
}

// WithContext returns logger with the fields of ContextFields attached.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
