package services

import "context"

type contextKey string

const (
	itemIDKey    contextKey = "item_id"
	titleKey     contextKey = "title"
	pageKey      contextKey = "page"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithItemID annotates context with the listing item identifier.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the listing item identifier if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTitle annotates context with the raw listing title being processed.
func WithTitle(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, titleKey, title)
}

// TitleFromContext returns the raw listing title if present.
func TitleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(titleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPage annotates context with the listing page number.
func WithPage(ctx context.Context, page int) context.Context {
	if page <= 0 {
		return ctx
	}
	return context.WithValue(ctx, pageKey, page)
}

// PageFromContext returns the listing page number if present.
func PageFromContext(ctx context.Context) (int, bool) {
	switch v := ctx.Value(pageKey).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
