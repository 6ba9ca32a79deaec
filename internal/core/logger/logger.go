package logger

import (
	"context"
	"strings"
	"time"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
	LogLevelFatal LogLevel = "FATAL"
)

var levelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
	LogLevelFatal: 4,
}

// ParseLevel is case-insensitive and falls back to info.
func ParseLevel(value string) LogLevel {
	level := LogLevel(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := levelRank[level]; ok {
		return level
	}
	return LogLevelInfo
}

func (l LogLevel) Enabled(min LogLevel) bool {
	return levelRank[l] >= levelRank[min]
}

type attributes = map[string]any

type LogEntry struct {
	Level      LogLevel
	Message    string
	Attributes attributes
	Error      error
	Timestamp  time.Time
}

type Logger interface {
	Log(ctx context.Context, entry LogEntry)
	Shutdown(ctx context.Context) error
}

type Options struct {
	CollectorEndpoint string
	ServiceName       string
	IsProduction      bool
	Level             LogLevel
}

// discard drops every entry. It is the logger until Initialize runs.
type discard struct{}

func (discard) Log(context.Context, LogEntry)  {}
func (discard) Shutdown(context.Context) error { return nil }

var globalLogger Logger = discard{}

func newLogEntry(level LogLevel, message string, err error, attrs attributes) LogEntry {
	return LogEntry{
		Level:      level,
		Message:    message,
		Attributes: attrs,
		Error:      err,
		Timestamp:  time.Now(),
	}
}

func Debug(ctx context.Context, message string, attrs attributes) {
	globalLogger.Log(ctx, newLogEntry(LogLevelDebug, message, nil, attrs))
}

func Info(ctx context.Context, message string, attrs attributes) {
	globalLogger.Log(ctx, newLogEntry(LogLevelInfo, message, nil, attrs))
}

func Warn(ctx context.Context, message string, attrs attributes) {
	globalLogger.Log(ctx, newLogEntry(LogLevelWarn, message, nil, attrs))
}

func Error(ctx context.Context, message string, err error, attrs attributes) {
	globalLogger.Log(ctx, newLogEntry(LogLevelError, message, err, attrs))
}

// Fatal logs and exits the process with status 1, except under discard.
func Fatal(ctx context.Context, message string, err error, attrs attributes) {
	globalLogger.Log(ctx, newLogEntry(LogLevelFatal, message, err, attrs))
}

func Log(ctx context.Context, entry LogEntry) {
	globalLogger.Log(ctx, entry)
}

func Shutdown(ctx context.Context) error {
	return globalLogger.Shutdown(ctx)
}

func Initialize(opts Options) error {
	var (
		l   Logger
		err error
	)

	if opts.Level == "" {
		opts.Level = LogLevelInfo
	}

	if opts.IsProduction {
		l, err = initializeOtelLogger(opts)
	} else {
		l, err = initStdoutLogger(opts)
	}

	if err != nil {
		return err
	}

	globalLogger = l
	return nil
}

// SetLogger replaces the global logger, mostly for tests.
func SetLogger(l Logger) {
	if l == nil {
		l = discard{}
	}
	globalLogger = l
}
