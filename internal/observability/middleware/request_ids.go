package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type ctxKey string

const (
	CtxKeyRequestID ctxKey = "request_id"
	CtxKeyTraceID   ctxKey = "trace_id"
	ctxKeyLogger    ctxKey = "logger"
)

func generateID() string {
	buf := make([]byte, 8) // 16 hex chars
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

// WithRequestAndTrace tags the request with request and trace ids, echoes the
// request id back to the client and stores a request-scoped logger.
func WithRequestAndTrace(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = generateID()
			}
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = generateID()
			}

			reqLogger := logger.With("request_id", reqID, "trace_id", traceID)

			ctx := context.WithValue(r.Context(), CtxKeyRequestID, reqID)
			ctx = context.WithValue(ctx, CtxKeyTraceID, traceID)
			ctx = context.WithValue(ctx, ctxKeyLogger, reqLogger)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", reqID)

			start := time.Now()
			reqLogger.Debug("incoming request", "method", r.Method, "path", r.URL.Path)

			next.ServeHTTP(w, r)

			reqLogger.Info("finished request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTraceID).(string); ok {
		return v
	}
	return ""
}

// LoggerFromContext returns the request-scoped logger, or slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if v, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && v != nil {
		return v
	}
	return slog.Default()
}
