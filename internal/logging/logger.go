package logging

import (
	"context"
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the process default. Call
// again via Attach once the database is up to add the Postgres sink.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// Attach replaces the default logger with one that writes to stdout and
// fans ERROR+ records into the given store handler.
func Attach(store slog.Handler) {
	slog.SetDefault(slog.New(&teeHandler{handlers: []slog.Handler{stdoutHandler(), store}}))
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// teeHandler fans records out to every handler that wants them.
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range t.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: handlers}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: handlers}
}
