package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"clipset/internal/services"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error records err under the "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger
// becomes a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WithContext adds the item index, stage and run id carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if idx, ok := services.ItemIndexFromContext(ctx); ok {
		args = append(args, slog.Int(FieldItemIndex, idx))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		args = append(args, slog.String(FieldStage, stage))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, filling in generic values for any the caller left out.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
		String(FieldImpact, "affected items are skipped"),
	)
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// ErrorWithContext is WarnWithContext at error level, without an impact field.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
	)
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

func withDefaults(attrs []Attr, defaults ...Attr) []Attr {
	for _, def := range defaults {
		present := slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == def.Key })
		if !present {
			attrs = append(attrs, def)
		}
	}
	return attrs
}
