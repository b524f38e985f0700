package startup

import (
	"time"

	"clipfilter/internal/logging"
)

// ServerConfig is what the startup summary reports.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	MaxUploadMB     int64
	EngineAvailable bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening endpoints once the server is wired.
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  Upload limit:    %d MB", config.MaxUploadMB)
	if !config.EngineAvailable {
		logging.Warn("  Video engine:    UNAVAILABLE (conversions will fail)")
	}
	logging.Info("")
	logging.Info("  Application:     http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(rule)
}

// LogShutdownInitiated opens the shutdown block of the log.
func LogShutdownInitiated(signal string) {
	section("SHUTDOWN INITIATED (received %s)", signal)
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs and exits with status 1.
func LogFatal(format string, args ...any) {
	logging.Fatal(format, args...)
}
