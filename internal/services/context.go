package services

import "context"

// Context keys for the values every stage logs with.
type (
	itemIndexKey struct{}
	stageKey     struct{}
	runIDKey     struct{}
)

// WithItemIndex records the input position of the item being processed.
func WithItemIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, itemIndexKey{}, index)
}

func ItemIndexFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(itemIndexKey{}).(int)
	return index, ok
}

// WithStage records the pipeline stage. An empty stage leaves ctx unchanged.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey{}, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey{})
}

// WithRunID records the run identifier. An empty id leaves ctx unchanged.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey{}, id)
}

func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey{})
}

func withString(ctx context.Context, key any, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key any) (string, bool) {
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
