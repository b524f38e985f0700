// Package main provides the entry point for the clipfilter server.
//
// clipfilter is a single-user web tool that applies a fixed visual filter
// chain to a short video clip and shows the original and the result side by
// side. The work is done by a lazily loaded ffmpeg engine shared by every
// conversion in the process.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT or GOMEMLIMIT
//  2. Configuration Loading: Reads CONFIG_FILE and environment variables, prepares WORK_DIR
//  3. Engine Check: Reports whether ffmpeg and ffprobe can be found
//  4. Component Initialization:
//     - Preview registry holding the source and result buffers
//     - Engine session, bootstrapped on the first conversion
//     - Pipeline controller driving the state machine
//     - Memory monitor refusing uploads under memory pressure
//     - Metrics collector
//  5. HTTP Server Setup: Routes, W3C access log and request metrics
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM
//
// # HTTP Servers
//
//  1. Main Server (default port 8080):
//     - Embedded single page at /
//     - Pipeline API under /api
//     - Health probes /health, /healthz, /livez, /readyz and /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Graceful Shutdown
//
//  1. Stop accepting new HTTP requests and end event streams
//  2. Wait for a running conversion, cancelling it after the timeout
//  3. Release previews and close the engine, which removes its scratch files
//  4. Stop the collector and memory monitor
//  5. Shutdown the metrics server
//
// All shutdown steps share a 30 second timeout.
//
// # Build
//
//	go build -ldflags "-X clipfilter/internal/startup.Version=1.0.0" -o clipfilter ./cmd/clipfilter
//
// ffmpeg and ffprobe must be installed at runtime.
package main
