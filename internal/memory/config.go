package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"clipfilter/internal/logging"
	"clipfilter/internal/metrics"
)

// DefaultMemoryRatio is the share of the container limit handed to the Go
// heap. Preview buffers live on the heap; ffmpeg runs outside it.
const DefaultMemoryRatio = 0.75

// ConfigResult describes what ConfigureFromEnv did.
type ConfigResult struct {
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets the runtime memory limit from MEMORY_LIMIT and
// MEMORY_RATIO unless GOMEMLIMIT already did. Call it before uploads are
// accepted.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			metrics.GoMemLimit.Set(float64(limit))
			return ConfigResult{Configured: true, Source: "GOMEMLIMIT", GoMemLimit: limit}
		}
		return ConfigResult{}
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving the Go memory limit unset")
		return ConfigResult{Source: "none"}
	}
	container, err := parseQuantity(raw)
	if err != nil {
		logging.Warn("Ignoring MEMORY_LIMIT: %v", err)
		return ConfigResult{Source: "none"}
	}

	ratio := parseRatio(os.Getenv("MEMORY_RATIO"))
	limit := int64(float64(container) * ratio)
	debug.SetMemoryLimit(limit)
	metrics.GoMemLimit.Set(float64(limit))

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		formatBytes(limit), ratio*100, formatBytes(container))

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: container,
		GoMemLimit:     limit,
		Ratio:          ratio,
	}
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", raw, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}

var quantitySuffixes = []struct {
	suffix string
	factor int64
}{
	{"Ki", 1 << 10}, {"Mi", 1 << 20}, {"Gi", 1 << 30}, {"Ti", 1 << 40},
	{"k", 1e3}, {"K", 1e3}, {"M", 1e6}, {"G", 1e9}, {"T", 1e12},
}

// parseQuantity accepts plain bytes or a Kubernetes-style quantity such as
// "512Mi" or "2G".
func parseQuantity(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	factor := int64(1)
	for _, q := range quantitySuffixes {
		if strings.HasSuffix(s, q.suffix) {
			s = strings.TrimSuffix(s, q.suffix)
			factor = q.factor
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid memory quantity %q", raw)
	}
	if n > math.MaxInt64/factor {
		return 0, fmt.Errorf("memory quantity %q overflows", raw)
	}
	return n * factor, nil
}

func formatBytes(b int64) string {
	if b < 1024 {
		return strconv.FormatInt(b, 10) + " B"
	}
	value := float64(b)
	unit := -1
	for value >= 1024 && unit < 5 {
		value /= 1024
		unit++
	}
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + string("KMGTPE"[unit]) + "iB"
}
