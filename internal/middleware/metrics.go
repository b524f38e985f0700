package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"clipfilter/internal/metrics"
)

// metricsResponseWriter captures the status code and, for streaming paths,
// the time the first byte was sent.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode      int
	headerWritten   bool
	startTime       time.Time
	firstByteTime   time.Time
	isStreamingPath bool
}

func newMetricsResponseWriter(w http.ResponseWriter, startTime time.Time, streaming bool) *metricsResponseWriter {
	return &metricsResponseWriter{
		ResponseWriter:  w,
		statusCode:      http.StatusOK,
		startTime:       startTime,
		isStreamingPath: streaming,
	}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.markFirstByte()
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.markFirstByte()
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *metricsResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *metricsResponseWriter) markFirstByte() {
	rw.headerWritten = true
	if rw.isStreamingPath {
		rw.firstByteTime = time.Now()
	}
}

// getDuration returns time to first byte for streaming paths and the total
// elapsed time otherwise.
func (rw *metricsResponseWriter) getDuration() time.Duration {
	if rw.isStreamingPath && !rw.firstByteTime.IsZero() {
		return rw.firstByteTime.Sub(rw.startTime)
	}
	return time.Since(rw.startTime)
}

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newMetricsResponseWriter(w, time.Now(), isStreamingPath(r.URL.Path))
			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			status := strconv.Itoa(wrapped.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(wrapped.getDuration().Seconds())
		})
	}
}

// isStreamingPath reports whether the response body is long-lived: the SSE
// state stream and preview downloads.
func isStreamingPath(path string) bool {
	return path == "/api/events" || strings.HasPrefix(path, "/api/preview/")
}

// normalizePath replaces dynamic segments to keep label cardinality bounded.
func normalizePath(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "preview" {
		normalized := "/api/preview/{id}"
		switch {
		case len(parts) == 4 && parts[3] == "poster":
			normalized += "/poster"
		case len(parts) > 3:
			normalized += "/{path}"
		}
		return normalized
	}

	if len(parts) > 3 {
		return "/" + strings.Join(parts[:3], "/") + "/{path}"
	}
	return path
}
