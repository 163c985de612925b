package logging

import (
	"context"
	"log/slog"
)

// AttrSource supplies dynamic attributes for every log record. The
// playback session context implements it with the session name and the
// current virtual time.
type AttrSource interface {
	LogAttrs() []slog.Attr
}

// AttrSourceFunc adapts a plain function to AttrSource.
type AttrSourceFunc func() []slog.Attr

func (f AttrSourceFunc) LogAttrs() []slog.Attr { return f() }

// ContextHandler decorates another handler, appending the source's
// attributes to each record before delegating.
type ContextHandler struct {
	inner  slog.Handler
	source AttrSource
}

func NewContextHandler(inner slog.Handler, source AttrSource) *ContextHandler {
	return &ContextHandler{inner: inner, source: source}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source != nil {
		r.AddAttrs(h.source.LogAttrs()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), source: h.source}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name), source: h.source}
}
