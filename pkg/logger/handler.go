package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context, if present.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler decorates a slog.Handler, adding attributes taken from the
// record's context at log time.
type ContextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	if len(extractors) == 0 {
		return next
	}
	return &ContextHandler{next: next, extractors: extractors}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
