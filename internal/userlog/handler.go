package userlog

import (
	"context"
	"log/slog"
)

// CategoryAnomaly marks records about single entries excluded from a build.
const CategoryAnomaly = "anomaly"

// Handler is a slog.Handler that wraps another handler and also appends
// WARN and ERROR records to the user log. Anomaly records reach the wrapped
// handler only when it is enabled for debug output.
type Handler struct {
	inner slog.Handler
	log   *Log
	level slog.Level // Minimum level to forward to the user log
	attrs []slog.Attr
	group string
}

// NewHandler creates a Handler forwarding WARN and above to log.
func NewHandler(inner slog.Handler, log *Log) *Handler {
	return &Handler{inner: inner, log: log, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	anomaly := category(r) == CategoryAnomaly
	if h.inner.Enabled(ctx, r.Level) && (!anomaly || h.inner.Enabled(ctx, slog.LevelDebug)) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}
	if r.Level < h.level {
		return nil
	}
	return h.log.Append(SeverityOf(r.Level), r.Time, r.Message, h.fields(r)...)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &c
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.inner = h.inner.WithGroup(name)
	if h.group != "" {
		c.group = h.group + "." + name
	} else {
		c.group = name
	}
	return &c
}

func (h *Handler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

func (h *Handler) fields(r slog.Record) []Field {
	var out []Field
	add := func(a slog.Attr) {
		if a.Key == "category" || a.Key == "" {
			return
		}
		out = append(out, Field{Key: a.Key, Value: a.Value.Resolve().String()})
	}
	for _, a := range h.attrs {
		add(a)
	}
	var own []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)
		return true
	})
	for _, a := range h.qualify(own) {
		add(a)
	}
	return out
}

func category(r slog.Record) string {
	var c string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			c = a.Value.String()
			return false
		}
		return true
	})
	return c
}
