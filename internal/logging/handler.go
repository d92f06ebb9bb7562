package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/lmittmann/tint"
)

// Options configures the process logger. Console receives tint text or JSON
// records depending on Format. File, when set, receives JSON records at
// FileLevel regardless of the console level.
type Options struct {
	Level     slog.Level
	Format    string
	Console   io.Writer
	File      io.Writer
	FileLevel slog.Level
}

// New builds the logger used by the server and the CLI.
func New(opts Options) *slog.Logger {
	var console slog.Handler
	if opts.Console != nil {
		switch strings.ToLower(strings.TrimSpace(opts.Format)) {
		case "json":
			console = slog.NewJSONHandler(opts.Console, &slog.HandlerOptions{Level: opts.Level})
		default:
			console = tint.NewHandler(opts.Console, &tint.Options{Level: opts.Level})
		}
	}

	var file slog.Handler
	if opts.File != nil {
		file = slog.NewJSONHandler(opts.File, &slog.HandlerOptions{Level: opts.FileLevel})
	}

	return slog.New(Tee(console, file))
}

// Tee sends each record to every handler that accepts its level. Nil handlers
// are skipped; with none left the records are discarded.
func Tee(handlers ...slog.Handler) slog.Handler {
	sinks := slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool {
		return h == nil
	})
	switch len(sinks) {
	case 0:
		return slog.NewTextHandler(io.Discard, nil)
	case 1:
		return sinks[0]
	}
	return teeHandler{sinks: sinks}
}

type teeHandler struct {
	sinks []slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t.sinks, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, sink := range t.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		if err := sink.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) derive(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make([]slog.Handler, len(t.sinks))
	for i, sink := range t.sinks {
		next[i] = fn(sink)
	}
	return teeHandler{sinks: next}
}
