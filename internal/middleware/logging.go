package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id that ties an access log line to a request.
// An incoming value is kept when it is a valid UUID.
const RequestIDHeader = "X-Request-ID"

const serviceName = "ClipFilter/1.0"

// w3cFields lists the columns of every access log line, in order.
const w3cFields = "date time x-request-id c-ip cs-method cs-uri-stem cs-uri-query cs(Range) sc-status sc-bytes time-taken sc(Content-Type) cs(User-Agent)"

// responseWriter records what the handler sent.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush keeps the event stream live through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		rw.wroteHeader = true
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingConfig controls which requests reach the access log.
type LoggingConfig struct {
	SkipPaths       []string
	SkipExtensions  []string
	LogStaticFiles  bool
	LogHealthChecks bool

	// Output receives the log lines. nil means the standard logger.
	Output *log.Logger
}

// DefaultLoggingConfig logs API traffic and health checks but not the page
// assets.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions:  []string{".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".svg", ".webmanifest"},
		LogHealthChecks: true,
	}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// accessEntry is one access log line before formatting.
type accessEntry struct {
	at          time.Time
	requestID   string
	clientIP    string
	method      string
	path        string
	query       string
	byteRange   string
	status      int
	bytes       int64
	took        time.Duration
	contentType string
	userAgent   string
}

func (e accessEntry) String() string {
	fields := []string{
		e.at.Format("2006-01-02"),
		e.at.Format("15:04:05"),
		e.requestID,
		field(e.clientIP),
		field(e.method),
		field(e.path),
		field(e.query),
		field(e.byteRange),
		strconv.Itoa(e.status),
		strconv.FormatInt(e.bytes, 10),
		strconv.FormatInt(e.took.Milliseconds(), 10),
		field(e.contentType),
		field(e.userAgent),
	}
	return strings.Join(fields, " ")
}

// Logger returns middleware that writes one W3C Extended Log Format line per
// request and stamps every response with a request id. Skipped requests still
// get an id.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	out := config.Output
	if out == nil {
		out = log.Default()
	}
	out.Printf("#Software: %s", serviceName)
	out.Printf("#Fields: %s", w3cFields)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestID(r)
			w.Header().Set(RequestIDHeader, id)

			if shouldSkip(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			//nolint:gosec // G706: every request-controlled value passes through field().
			out.Println(accessEntry{
				at:          start.UTC(),
				requestID:   id,
				clientIP:    getClientIP(r),
				method:      r.Method,
				path:        r.URL.Path,
				query:       r.URL.RawQuery,
				byteRange:   r.Header.Get("Range"),
				status:      wrapped.statusCode,
				bytes:       wrapped.bytesWritten,
				took:        time.Since(start),
				contentType: wrapped.Header().Get("Content-Type"),
				userAgent:   r.Header.Get("User-Agent"),
			}.String())
		})
	}
}

func requestID(r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get(RequestIDHeader)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func shouldSkip(path string, config LoggingConfig) bool {
	for _, skipPath := range config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}

	if !config.LogHealthChecks && healthCheckPaths[path] {
		return true
	}

	if !config.LogStaticFiles {
		lower := strings.ToLower(path)
		for _, ext := range config.SkipExtensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
	}

	return false
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// field renders a request-controlled value as one log column: control
// characters are dropped (newlines become spaces), an empty value becomes
// "-", and values containing blanks or quotes are quoted.
func field(s string) string {
	s = sanitizeLogField(s)
	if s == "" {
		return "-"
	}
	if strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
