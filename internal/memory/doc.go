// Package memory configures the Go memory limit for containerized runs and
// provides upload backpressure.
//
// Source and result clips are held in memory for the lifetime of a session,
// so an unbounded heap is the main OOM risk. ffmpeg itself runs as a child
// process outside the Go heap, which is why only a share of the container
// limit is handed to GOMEMLIMIT.
//
// # Configuration
//
// Call [ConfigureFromEnv] early in main:
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    // ...
//	}
//
// # Environment Variables
//
//   - GOMEMLIMIT: Standard Go environment variable. If set, takes precedence.
//   - MEMORY_LIMIT: Container memory limit, typically from the Kubernetes
//     Downward API (resourceFieldRef: limits.memory). Plain bytes or a
//     quantity such as 512Mi or 2G.
//   - MEMORY_RATIO: Share of MEMORY_LIMIT given to the Go heap (default 0.75).
//
// # Backpressure
//
// A [Monitor] samples heap usage on an interval. Once usage crosses the
// critical water mark, [Monitor.IsPaused] reports true and the upload handler
// answers 503 until usage drops below the high water mark again:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
package memory
