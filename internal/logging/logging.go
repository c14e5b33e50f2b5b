package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Setup initializes the default slog logger with JSON output to w. The
// server logs to stdout; the CLI logs to stderr so that stdout carries only
// the rendered description.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger returns a context with the given logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context, falling back to
// fallback and then to slog.Default().
func FromContext(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	for _, l := range fallback {
		if l != nil {
			return l
		}
	}
	return slog.Default()
}

// RequestFields holds all fields logged per request.
type RequestFields struct {
	Method     string
	Path       string
	Format     string
	Status     int
	Cache      string
	RenderMs   int64
	SanitizeMs int64
	TotalMs    int64
	Bytes      int64
	Error      string // rejection or failure reason, empty on success
}

// LogRequest logs a completed request with structured fields.
func LogRequest(logger *slog.Logger, f RequestFields) {
	level := slog.LevelInfo
	if f.Status >= 500 {
		level = slog.LevelError
	} else if f.Status >= 400 {
		level = slog.LevelWarn
	}

	attrs := []any{
		"method", f.Method,
		"path", f.Path,
		"format", f.Format,
		"status", f.Status,
		"cache", f.Cache,
		"render_ms", f.RenderMs,
		"sanitize_ms", f.SanitizeMs,
		"total_ms", f.TotalMs,
		"bytes", f.Bytes,
	}
	if f.Error != "" {
		attrs = append(attrs, "error", f.Error)
	}

	logger.Log(context.Background(), level, "request", attrs...)
}

// ByteCountingWriter wraps http.ResponseWriter to capture status code and bytes written.
type ByteCountingWriter struct {
	http.ResponseWriter
	StatusCode int
	Bytes      int64
}

// WriteHeader captures the status code.
func (w *ByteCountingWriter) WriteHeader(code int) {
	w.StatusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Write captures bytes written.
func (w *ByteCountingWriter) Write(b []byte) (int, error) {
	if w.StatusCode == 0 {
		w.StatusCode = 200
	}
	n, err := w.ResponseWriter.Write(b)
	w.Bytes += int64(n)
	return n, err
}

// Middleware returns an HTTP middleware that logs every request with timing.
// Handlers find a logger carrying the request method and path with
// FromContext. fill, when not nil, adds handler-specific fields (format,
// cache status, ...) read from the finished response.
func Middleware(logger *slog.Logger, fill func(w http.ResponseWriter, f *RequestFields)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			base := FromContext(r.Context(), logger)
			ctx := WithLogger(r.Context(), base.With("method", r.Method, "path", r.URL.Path))

			wrapped := &ByteCountingWriter{ResponseWriter: w}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			if wrapped.StatusCode == 0 {
				wrapped.StatusCode = 200
			}

			f := RequestFields{
				Method: r.Method,
				Path:   r.URL.Path,
				Status: wrapped.StatusCode,
				Bytes:  wrapped.Bytes,
			}
			if fill != nil {
				fill(wrapped, &f)
			}
			f.TotalMs = time.Since(start).Milliseconds()

			LogRequest(base, f)
		})
	}
}
