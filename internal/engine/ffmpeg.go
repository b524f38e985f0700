package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"clipfilter/internal/logging"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "engine.lock"
	scratchName  = "vfs"
	stderrTail   = 4096
)

// FFmpeg is an Engine that drives local ffmpeg and ffprobe binaries.
type FFmpeg struct {
	mu          sync.RWMutex
	loaded      bool
	ffmpegPath  string
	ffprobePath string
	version     string
	dir         string
	lock        *flock.Flock

	handlerMu sync.Mutex
	handlers  []ProgressFunc

	processes map[*exec.Cmd]string
	processMu sync.Mutex
}

var _ Engine = (*FFmpeg)(nil)

// NewFFmpeg creates an unloaded FFmpeg engine.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		processes: make(map[*exec.Cmd]string),
	}
}

// Load resolves the binaries, takes ownership of the work directory and
// prepares an empty scratch directory.
func (e *FFmpeg) Load(ctx context.Context, res Resources) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	ffmpeg := Probe(ctx, "ffmpeg", res.FFmpeg, res.ProbeTimeout)
	if !ffmpeg.Available {
		return fmt.Errorf("ffmpeg unavailable: %s", ffmpeg.Detail)
	}
	ffprobe := Probe(ctx, "ffprobe", res.FFprobe, res.ProbeTimeout)
	if !ffprobe.Available {
		return fmt.Errorf("ffprobe unavailable: %s", ffprobe.Detail)
	}

	if res.WorkDir == "" {
		return errors.New("engine work directory not configured")
	}
	if err := os.MkdirAll(res.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	lock := flock.New(filepath.Join(res.WorkDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock work directory: %w", err)
	}
	if !ok {
		return fmt.Errorf("work directory %s is in use by another process", res.WorkDir)
	}

	// The lock makes it safe to discard leftovers from a previous run.
	dir := filepath.Join(res.WorkDir, scratchName)
	if err := os.RemoveAll(dir); err != nil {
		_ = lock.Unlock()
		return fmt.Errorf("failed to purge scratch directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = lock.Unlock()
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}

	e.ffmpegPath = ffmpeg.Command
	e.ffprobePath = ffprobe.Command
	e.version = ffmpeg.Version
	e.dir = dir
	e.lock = lock
	e.loaded = true

	logging.Info("Engine loaded: %s (%s)", e.ffmpegPath, e.version)
	logging.Debug("  ffprobe: %s", e.ffprobePath)
	logging.Debug("  scratch: %s", e.dir)
	return nil
}

// On registers fn for event. Only EventProgress is emitted.
func (e *FFmpeg) On(event Event, fn ProgressFunc) {
	if event != EventProgress || fn == nil {
		return
	}
	e.handlerMu.Lock()
	e.handlers = append(e.handlers, fn)
	e.handlerMu.Unlock()
}

func (e *FFmpeg) emit(fraction float64) {
	e.handlerMu.Lock()
	handlers := make([]ProgressFunc, len(e.handlers))
	copy(handlers, e.handlers)
	e.handlerMu.Unlock()

	for _, fn := range handlers {
		fn(fraction)
	}
}

// Version returns the first line of `ffmpeg -version` once loaded.
func (e *FFmpeg) Version() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Dir returns the scratch directory backing the virtual filesystem.
func (e *FFmpeg) Dir() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dir
}

func (e *FFmpeg) path(name string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.loaded {
		return "", ErrNotLoaded
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(e.dir, name), nil
}

// WriteFile stores data in the scratch directory.
func (e *FFmpeg) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := e.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	logging.Debug("Engine wrote %s (%d bytes)", name, len(data))
	return nil
}

// ReadFile reads a file from the scratch directory.
func (e *FFmpeg) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := e.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// DeleteFile removes a file from the scratch directory.
func (e *FFmpeg) DeleteFile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := e.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Exec runs ffmpeg inside the scratch directory, reporting progress to the
// registered handlers until the process exits.
func (e *FFmpeg) Exec(ctx context.Context, args []string) error {
	e.mu.RLock()
	loaded, dir, ffmpeg, ffprobe := e.loaded, e.dir, e.ffmpegPath, e.ffprobePath
	e.mu.RUnlock()
	if !loaded {
		return ErrNotLoaded
	}

	var total time.Duration
	if input := inputArg(args); input != "" {
		duration, err := probeDuration(ctx, ffprobe, dir, input)
		if err != nil {
			logging.Debug("Engine could not probe %s, progress limited to completion: %v", input, err)
		} else {
			total = duration
		}
	}

	full := append([]string{"-hide_banner", "-nostdin", "-y", "-nostats", "-progress", "pipe:1"}, args...)
	cmd := exec.CommandContext(ctx, ffmpeg, full...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	e.processMu.Lock()
	e.processes[cmd] = inputArg(args)
	e.processMu.Unlock()
	defer func() {
		e.processMu.Lock()
		delete(e.processes, cmd)
		e.processMu.Unlock()
	}()

	logging.Debug("Engine exec: ffmpeg %v", full)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	if err := readProgress(stdout, total, e.emit); err != nil {
		logging.Debug("Engine progress stream error: %v", err)
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error("FFmpeg stderr: %s", stderr.String())
		if tail := stderr.String(); tail != "" {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(tail))
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// Close kills running jobs, removes the scratch directory and releases the
// work directory lock.
func (e *FFmpeg) Close() error {
	e.processMu.Lock()
	for cmd, input := range e.processes {
		if cmd.Process != nil {
			logging.Info("Killing engine process for: %s", input)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill engine process for %s: %v", input, err)
			}
		}
	}
	e.processMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return nil
	}
	e.loaded = false

	var errs []error
	if err := os.RemoveAll(e.dir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove scratch directory: %w", err))
	}
	if e.lock != nil {
		if err := e.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release work directory lock: %w", err))
		}
	}
	return errors.Join(errs...)
}
