package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey struct{}

// Init builds the process logger on stdout and installs it as the slog default
func Init(service, level, appEnv string) *slog.Logger {
	logger := New(os.Stdout, service, level, appEnv)
	slog.SetDefault(logger)
	return logger
}

// New writes text in development and JSON everywhere else
func New(w io.Writer, service, level, appEnv string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if appEnv == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("service", service, "env", appEnv)
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// For returns the request logger whose messages read "[tag] message".
func For(ctx context.Context, tag string) *slog.Logger {
	return Tagged(FromContext(ctx), tag)
}

// Tagged prefixes every message of l with "[tag] ". Tagging an already tagged
// logger replaces the tag.
func Tagged(l *slog.Logger, tag string) *slog.Logger {
	h := l.Handler()
	if th, ok := h.(tagHandler); ok {
		h = th.Handler
	}
	return slog.New(tagHandler{Handler: h, tag: tag})
}

type tagHandler struct {
	slog.Handler
	tag string
}

func (h tagHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Message = "[" + h.tag + "] " + r.Message
	return h.Handler.Handle(ctx, r)
}

func (h tagHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return tagHandler{Handler: h.Handler.WithAttrs(attrs), tag: h.tag}
}

func (h tagHandler) WithGroup(name string) slog.Handler {
	return tagHandler{Handler: h.Handler.WithGroup(name), tag: h.tag}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
