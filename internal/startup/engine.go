package startup

import (
	"context"
	"strings"

	"clipfilter/internal/engine"
	"clipfilter/internal/logging"
)

// CheckEngine probes the configured ffmpeg and ffprobe candidates, in that
// order, and logs the result. Missing binaries are not fatal: the first
// conversion reports them to the user and /readyz reflects them afterwards.
func CheckEngine(ctx context.Context, res engine.Resources) []engine.Status {
	section("VIDEO ENGINE")

	statuses := []engine.Status{
		engine.Probe(ctx, "ffmpeg", res.FFmpeg, res.ProbeTimeout),
		engine.Probe(ctx, "ffprobe", res.FFprobe, res.ProbeTimeout),
	}

	missing := false
	for _, s := range statuses {
		if !s.Available {
			missing = true
			logging.Warn("  %s not available: %s", s.Name, s.Detail)
			logging.Debug("    tried: %s", strings.Join(s.Tried, ", "))
			continue
		}
		logging.Info("  [OK] %-8s %s", s.Name+":", s.Command)
		logging.Debug("    %s", s.Version)
	}

	logging.Info("  Scratch root: %s", res.WorkDir)
	if missing {
		logging.Warn("  Conversions will fail until ffmpeg and ffprobe are installed")
	} else {
		logging.Info("  Engine loads on the first conversion request")
	}
	return statuses
}
