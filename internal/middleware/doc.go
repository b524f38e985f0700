// Package middleware provides HTTP middleware for the clipfilter server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path labels
//
// Both wrappers implement http.Flusher so the server-sent event stream is
// delivered as it is written.
package middleware
