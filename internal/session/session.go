package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"clipfilter/internal/engine"
	"clipfilter/internal/logging"
)

// MaxProgress is the highest percentage engine progress can report.
const MaxProgress = 97

// ErrClosed is returned by EnsureReady after Close.
var ErrClosed = errors.New("session closed")

// BootstrapError reports an engine that failed to initialize. It is fatal for
// the session.
type BootstrapError struct {
	Err error
}

func (e *BootstrapError) Error() string {
	return "failed to load the video engine: " + e.Err.Error()
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Factory constructs an unloaded engine.
type Factory func() engine.Engine

// Observer records bootstrap outcomes.
type Observer interface {
	ObserveBootstrap(duration time.Duration, err error)
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout bounds the bootstrap. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithObserver sets the bootstrap observer.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// Session holds at most one loaded engine.
type Session struct {
	factory   Factory
	resources engine.Resources
	timeout   time.Duration
	observer  Observer

	mu      sync.Mutex
	eng     engine.Engine
	err     error
	loading chan struct{}
	closed  bool

	watchMu sync.Mutex
	watcher *watcher
}

type watcher struct {
	fn func(percent int)
}

// New creates a session that will build its engine with factory and load it
// from res on first use.
func New(factory Factory, res engine.Resources, opts ...Option) *Session {
	s := &Session{
		factory:   factory,
		resources: res,
		timeout:   2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Percent maps fractional engine progress to a whole percentage in
// [0, MaxProgress].
func Percent(fraction float64) int {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 0
	}
	p := int(math.Floor(fraction * 100))
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}

// Ready reports whether the engine has been loaded.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng != nil
}

// Loading reports whether a bootstrap is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading != nil
}

// Err returns the recorded bootstrap failure, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// EnsureReady returns the loaded engine, bootstrapping it on first use.
func (s *Session) EnsureReady(ctx context.Context) (engine.Engine, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrClosed
	case s.eng != nil:
		eng := s.eng
		s.mu.Unlock()
		return eng, nil
	case s.err != nil:
		err := s.err
		s.mu.Unlock()
		return nil, err
	}

	done := s.loading
	if done == nil {
		done = make(chan struct{})
		s.loading = done
		go s.bootstrap(done)
	}
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.eng == nil {
		return nil, ErrClosed
	}
	return s.eng, nil
}

func (s *Session) bootstrap(done chan struct{}) {
	start := time.Now()
	logging.Info("Loading video engine...")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	eng := s.factory()
	err := eng.Load(ctx, s.resources)
	if err == nil {
		eng.On(engine.EventProgress, s.onProgress)
	}
	duration := time.Since(start)

	s.mu.Lock()
	closed := s.closed
	switch {
	case err != nil:
		s.err = &BootstrapError{Err: err}
		logging.Error("Video engine failed to load after %v: %v", duration, err)
	case closed:
		logging.Debug("Session closed during bootstrap, discarding engine")
	default:
		s.eng = eng
		logging.Info("Video engine ready in %v", duration)
	}
	s.loading = nil
	close(done)
	s.mu.Unlock()

	if err == nil && closed {
		if cerr := eng.Close(); cerr != nil {
			logging.Warn("failed to close discarded engine: %v", cerr)
		}
	}
	if s.observer != nil {
		s.observer.ObserveBootstrap(duration, err)
	}
}

func (s *Session) onProgress(fraction float64) {
	percent := Percent(fraction)

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		s.watcher.fn(percent)
	}
}

// Watch installs fn as the single progress watcher, replacing any previous
// one. fn is called sequentially from the engine's job goroutine and is never
// called after stop returns. stop must not be called from inside fn, nor
// while holding a lock that fn acquires.
func (s *Session) Watch(fn func(percent int)) (stop func()) {
	w := &watcher{fn: fn}

	s.watchMu.Lock()
	s.watcher = w
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		if s.watcher == w {
			s.watcher = nil
		}
		s.watchMu.Unlock()
	}
}

// Close releases the engine. Later EnsureReady calls fail with ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	eng := s.eng
	s.eng = nil
	s.mu.Unlock()

	if eng == nil {
		return nil
	}
	return eng.Close()
}
