package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"clipfilter/internal/logging"
)

// Status reports the outcome of probing one binary's candidate locations.
type Status struct {
	Name      string
	Command   string
	Version   string
	Available bool
	Detail    string
	Tried     []string
}

// Probe tries each candidate in order and returns the first one that runs
// `-version` successfully within timeout.
func Probe(ctx context.Context, name string, candidates []string, timeout time.Duration) Status {
	status := Status{Name: name}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	seen := make(map[string]bool, len(candidates))
	var lastDetail string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		status.Tried = append(status.Tried, candidate)

		path, err := exec.LookPath(candidate)
		if err != nil {
			lastDetail = fmt.Sprintf("binary %q not found", candidate)
			continue
		}

		version, err := binaryVersion(ctx, path, timeout)
		if err != nil {
			lastDetail = fmt.Sprintf("%s: %v", path, err)
			logging.Debug("  %s candidate %s rejected: %v", name, path, err)
			continue
		}

		status.Command = path
		status.Version = version
		status.Available = true
		return status
	}

	if lastDetail == "" {
		lastDetail = "no candidates configured"
	}
	status.Detail = lastDetail
	return status
}

func binaryVersion(ctx context.Context, path string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}

	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first), nil
}
