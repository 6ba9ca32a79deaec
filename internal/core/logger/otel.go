package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const fatalFlushTimeout = 2 * time.Second

type OTELLogger struct {
	logger   otellog.Logger
	provider *sdklog.LoggerProvider
	level    LogLevel
}

var otelSeverity = map[LogLevel]otellog.Severity{
	LogLevelDebug: otellog.SeverityDebug,
	LogLevelInfo:  otellog.SeverityInfo,
	LogLevelWarn:  otellog.SeverityWarn,
	LogLevelError: otellog.SeverityError,
	LogLevelFatal: otellog.SeverityFatal,
}

func initializeOtelLogger(opts Options) (Logger, error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(
		opts.CollectorEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	global.SetLoggerProvider(provider)

	return &OTELLogger{
		logger:   provider.Logger(opts.ServiceName),
		provider: provider,
		level:    opts.Level,
	}, nil
}

func (l *OTELLogger) Log(ctx context.Context, entry LogEntry) {
	if !entry.Level.Enabled(l.level) {
		return
	}

	var record otellog.Record
	record.SetTimestamp(entry.Timestamp)
	record.SetBody(otellog.StringValue(entry.Message))
	record.SetSeverityText(string(entry.Level))
	record.SetSeverity(otelSeverity[entry.Level])

	attrs := make([]otellog.KeyValue, 0, len(entry.Attributes)+1)
	for key, value := range entry.Attributes {
		attrs = append(attrs, toKeyValue(key, value))
	}
	if entry.Error != nil {
		attrs = append(attrs, otellog.String("error", entry.Error.Error()))
	}

	record.AddAttributes(attrs...)
	l.logger.Emit(ctx, record)

	if entry.Level == LogLevelFatal {
		// flush the batch processor so the fatal record is exported
		shutdownCtx, cancel := context.WithTimeout(context.Background(), fatalFlushTimeout)
		_ = l.provider.Shutdown(shutdownCtx)
		cancel()
		os.Exit(1)
	}
}

func toKeyValue(key string, value any) otellog.KeyValue {
	switch v := value.(type) {
	case string:
		return otellog.String(key, v)
	case int:
		return otellog.Int(key, v)
	case int64:
		return otellog.Int64(key, v)
	case float64:
		return otellog.Float64(key, v)
	case bool:
		return otellog.Bool(key, v)
	case time.Duration:
		return otellog.Int64(key, v.Milliseconds())
	case fmt.Stringer:
		return otellog.String(key, v.String())
	default:
		return otellog.String(key, fmt.Sprintf("%v", v))
	}
}

func (l *OTELLogger) Shutdown(ctx context.Context) error {
	return l.provider.Shutdown(ctx)
}
