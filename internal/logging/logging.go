// Package logging builds the process logger: an optional stream handler for
// humans plus a Slack handler for warnings and errors.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"nagato/internal/alert"
	"nagato/internal/config"
)

// New builds the logger described by cfg, writing the stream to w.
// With neither the stream nor a webhook configured, records are discarded.
func New(cfg *config.Config, w io.Writer, client *http.Client) *slog.Logger {
	var handlers []slog.Handler

	if cfg.LogStream {
		opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
		if cfg.LogFormat == "json" {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}

	if service := alert.NewService(cfg.SlackWebhookURL, client); service.IsEnabled() {
		handlers = append(handlers, alert.NewSlackHandler(service, slog.LevelWarn))
	}

	return slog.New(Fanout(handlers...))
}

// fanout sends each record to every handler that accepts it.
type fanout []slog.Handler

// Fanout combines handlers. Errors from individual handlers are joined.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
