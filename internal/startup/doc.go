// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] layers environment variables over an optional TOML file named
// by CONFIG_FILE, over built-in defaults. The following settings are
// supported (TOML key in parentheses):
//
//   - PORT (port): HTTP server port (default: 8080)
//   - METRICS_PORT (metrics_port): Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED (metrics_enabled): Enable or disable metrics server (default: true)
//   - MAX_UPLOAD_MB (max_upload_mb): Largest accepted upload (default: 200)
//   - WORK_DIR (engine.work_dir): Engine scratch space (default: $TMPDIR/clipfilter)
//   - FFMPEG_PATH (engine.ffmpeg_path): Explicit ffmpeg binary, tried before PATH
//   - FFPROBE_PATH (engine.ffprobe_path): Explicit ffprobe binary, tried before PATH
//   - ENGINE_TIMEOUT (engine.timeout_seconds): Engine bootstrap timeout (default: 2m)
//   - POSTERS (engine.posters): Extract a poster frame from each result (default: true)
//   - LOG_STATIC_FILES (logging.static_files): Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS (logging.health_checks): Log health check requests (default: true)
//
// LOG_LEVEL, MEMORY_LIMIT, MEMORY_RATIO and GOMEMLIMIT are read by the
// logging and memory packages before configuration is loaded.
//
// # Directory Setup
//
// The work directory is created if missing and must be writable.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
// Without ldflags the commit and build time come from the binary's VCS stamp.
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.CheckEngine(ctx, config.Resources())
//
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    MaxUploadMB:     config.MaxUploadMB,
//	    EngineAvailable: true,
//	    StartupDuration: time.Since(startTime),
//	})
//
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
