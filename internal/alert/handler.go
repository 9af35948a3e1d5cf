package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SlackHandler is a slog.Handler that forwards records at or above a level
// to a Service. Each record is sent synchronously so nothing is lost when
// the process exits right after logging.
type SlackHandler struct {
	service *Service
	level   slog.Leveler
	timeout time.Duration
	attrs   []slog.Attr
	groups  []string
}

// NewSlackHandler creates a handler forwarding records at level and above.
func NewSlackHandler(service *Service, level slog.Leveler) *SlackHandler {
	return &SlackHandler{service: service, level: level, timeout: 5 * time.Second}
}

// Enabled implements slog.Handler.
func (h *SlackHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.service.IsEnabled() && level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *SlackHandler) Handle(ctx context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", r.Level, r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})

	// The record's context may already be done when logging a failure.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()
	return h.service.Send(sendCtx, b.String())
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	fmt.Fprintf(b, "\n%s: %s", key, a.Value.String())
}

// WithAttrs implements slog.Handler.
func (h *SlackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	prefix := strings.Join(h.groups, ".")
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a = slog.Group(prefix, a)
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *SlackHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}
