package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors returned by Engine implementations.
var (
	// ErrNotFound reports a virtual file that does not exist.
	ErrNotFound = errors.New("engine: file not found")

	// ErrNotLoaded reports an operation attempted before Load succeeded or after Close.
	ErrNotLoaded = errors.New("engine: not loaded")

	// ErrInvalidName reports a virtual file name that is not a plain base name.
	ErrInvalidName = errors.New("engine: invalid file name")
)

// Event names an engine notification stream.
type Event string

// EventProgress delivers fractional job completion.
const EventProgress Event = "progress"

// ProgressFunc receives fractional completion in [0, 1]. Handlers are invoked
// sequentially from the goroutine running Exec and must not block.
type ProgressFunc func(fraction float64)

// Resources lists where the engine binaries may be found and where the
// virtual filesystem lives. Candidates are tried in order.
type Resources struct {
	FFmpeg  []string
	FFprobe []string
	WorkDir string

	// ProbeTimeout bounds each -version probe during Load.
	ProbeTimeout time.Duration
}

// DefaultResources returns the fixed candidate set, with any explicitly
// configured binary paths tried first.
func DefaultResources(workDir, ffmpegPath, ffprobePath string) Resources {
	return Resources{
		FFmpeg:       withOverride(ffmpegPath, "ffmpeg"),
		FFprobe:      withOverride(ffprobePath, "ffprobe"),
		WorkDir:      workDir,
		ProbeTimeout: 5 * time.Second,
	}
}

func withOverride(override, name string) []string {
	candidates := make([]string, 0, 5)
	if override = strings.TrimSpace(override); override != "" {
		candidates = append(candidates, override)
	}
	return append(candidates,
		name,
		filepath.Join("/usr/bin", name),
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/opt/homebrew/bin", name),
	)
}

// Engine is the narrow capability interface over the external transcoder.
type Engine interface {
	// Load bootstraps the engine. Calling Load on a loaded engine is a no-op.
	Load(ctx context.Context, res Resources) error

	// On registers a handler for the given event.
	On(event Event, fn ProgressFunc)

	// WriteFile stores data under name in the virtual filesystem.
	WriteFile(ctx context.Context, name string, data []byte) error

	// Exec runs one job. args are passed through to the engine and refer to
	// virtual files by name.
	Exec(ctx context.Context, args []string) error

	// ReadFile returns the contents of a virtual file.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// DeleteFile removes a virtual file, returning ErrNotFound if absent.
	DeleteFile(ctx context.Context, name string) error

	// Close stops running jobs and releases the virtual filesystem.
	Close() error
}

// validName accepts only plain base names so virtual files cannot escape the
// scratch directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
