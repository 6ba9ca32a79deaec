package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"
)

type StdoutLogger struct {
	logger *slog.Logger
	level  LogLevel
}

func initStdoutLogger(opts Options) (Logger, error) {
	return newStdoutLogger(os.Stdout, opts), nil
}

func newStdoutLogger(w io.Writer, opts Options) *StdoutLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	handlerWithAttrs := handler.WithAttrs([]slog.Attr{
		slog.String("service", opts.ServiceName),
	})

	return &StdoutLogger{
		logger: slog.New(handlerWithAttrs),
		level:  opts.Level,
	}
}

func (l *StdoutLogger) Log(ctx context.Context, entry LogEntry) {
	if !entry.Level.Enabled(l.level) {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	keys := make([]string, 0, len(entry.Attributes))
	for key := range entry.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys)*2+2)
	for _, key := range keys {
		attrs = append(attrs, key, entry.Attributes[key])
	}
	if entry.Error != nil {
		attrs = append(attrs, "error", entry.Error.Error())
	}

	switch entry.Level {
	case LogLevelDebug:
		l.logger.DebugContext(ctx, entry.Message, attrs...)
	case LogLevelInfo:
		l.logger.InfoContext(ctx, entry.Message, attrs...)
	case LogLevelWarn:
		l.logger.WarnContext(ctx, entry.Message, attrs...)
	case LogLevelError:
		l.logger.ErrorContext(ctx, entry.Message, attrs...)
	case LogLevelFatal:
		l.logger.ErrorContext(ctx, entry.Message, attrs...)
		os.Exit(1)
	}
}

func (l *StdoutLogger) Shutdown(context.Context) error {
	return nil
}
