package log

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type loggingTransport struct {
	next   http.RoundTripper
	logger *zap.Logger
}

// Transport wraps next so every round trip is logged at debug level.
func Transport(next http.RoundTripper, l *zap.Logger, name string) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if l == nil {
		panic("log.Transport received a nil *zap.Logger")
	}
	return &loggingTransport{next: next, logger: l.Named(name)}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t1 := time.Now()
	resp, err := t.next.RoundTrip(req)

	fields := []zap.Field{
		zap.String("type", "http_request"),
		zap.String("request_id", req.Header.Get(middleware.RequestIDHeader)),
		zap.String("http_method", req.Method),
		zap.String("http_path", req.URL.Path),
		zap.Duration("latency", time.Since(t1)),
	}
	msg := fmt.Sprintf("HTTP request completed: %s %s", req.Method, req.URL.Path)

	if err != nil {
		t.logger.Debug(msg, append(fields, zap.Error(err))...)
		return resp, err
	}

	fields = append(fields,
		zap.Int("http_status_code", resp.StatusCode),
		zap.String("http_status_text", statusLabel(resp.StatusCode)),
	)
	switch {
	case resp.StatusCode >= 500:
		t.logger.Warn(msg, fields...)
	default:
		t.logger.Debug(msg, fields...)
	}
	return resp, nil
}

func statusLabel(status int) string {
	switch {
	case status >= 100 && status < 300:
		return fmt.Sprintf("%d OK", status)
	case status >= 300 && status < 400:
		return fmt.Sprintf("%d Redirect", status)
	case status >= 400 && status < 500:
		return fmt.Sprintf("%d Client Error", status)
	case status >= 500:
		return fmt.Sprintf("%d Server Error", status)
	default:
		return fmt.Sprintf("%d Unknown", status)
	}
}
