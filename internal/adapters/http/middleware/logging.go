package middleware

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rafaelleal24/product-catalog/internal/core/logger"
)

const maxLoggedBodySize = 16 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// errorBodyWriter keeps a bounded copy of the response so failed requests can
// be logged with the payload that was returned.
type errorBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *errorBodyWriter) Write(b []byte) (int, error) {
	if w.body.Len()+len(b) <= maxLoggedBodySize {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *errorBodyWriter) WriteString(s string) (int, error) {
	if w.body.Len()+len(s) <= maxLoggedBodySize {
		w.body.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}

func levelForStatus(status int) logger.LogLevel {
	switch {
	case status >= 500:
		return logger.LogLevelError
	case status >= 400:
		return logger.LogLevelWarn
	default:
		return logger.LogLevelInfo
	}
}

// LogRequest logs one entry per request. Paths in skip are not logged.
func LogRequest(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		buf := bufferPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer bufferPool.Put(buf)

		writer := &errorBodyWriter{ResponseWriter: c.Writer, body: buf}
		c.Writer = writer

		c.Next()

		status := c.Writer.Status()
		attrs := map[string]any{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.route":       c.FullPath(),
			"http.status_code": status,
			"http.duration_ms": time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"request_id":       GetRequestID(c),
		}
		if c.Request.ContentLength > 0 {
			attrs["http.request_size"] = c.Request.ContentLength
		}
		if status >= 400 && strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") && buf.Len() > 0 {
			attrs["http.response_body"] = buf.String()
		}

		logHTTPRequest(c.Request.Context(), status, attrs)
	}
}

func logHTTPRequest(ctx context.Context, status int, attrs map[string]any) {
	logger.Log(ctx, logger.LogEntry{
		Level:      levelForStatus(status),
		Message:    "HTTP Request",
		Attributes: attrs,
		Timestamp:  time.Now(),
	})
}
