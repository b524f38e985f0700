package pipeline

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
	"time"

	"clipfilter/internal/engine"
	"clipfilter/internal/logging"
	"clipfilter/internal/media"
	"clipfilter/internal/preview"

	"github.com/google/uuid"
)

// cleanupTimeout bounds the best-effort removal of engine files once a job
// has ended, even when the job's own context is already done.
const cleanupTimeout = 10 * time.Second

// EngineProvider hands out the session's engine and its progress stream.
// *session.Session implements it.
type EngineProvider interface {
	Ready() bool
	EnsureReady(ctx context.Context) (engine.Engine, error)
	Watch(fn func(percent int)) (stop func())
}

// Outcome classifies a finished conversion request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeInvalid Outcome = "invalid"
)

// Outcomes lists every Outcome.
var Outcomes = []Outcome{OutcomeSuccess, OutcomeError, OutcomeInvalid}

// Observer records controller activity. Implementations must not call back
// into the Controller.
type Observer interface {
	StageChanged(from, to Stage)
	ProgressChanged(percent int)
	JobFinished(outcome Outcome, duration time.Duration)
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver sets the activity observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithPosters toggles poster frame extraction for results.
func WithPosters(enabled bool) Option {
	return func(c *Controller) { c.posters = enabled }
}

type stagedFile struct {
	name        string
	contentType string
	data        []byte
}

type job struct {
	id      string
	file    stagedFile
	input   string
	started time.Time
}

// Controller sequences file selection and conversion jobs. At most one job
// runs at a time.
type Controller struct {
	engines  EngineProvider
	previews *preview.Registry
	observer Observer
	posters  bool

	mu      sync.Mutex
	state   State
	staged  *stagedFile
	running bool
	subs    map[chan State]struct{}

	jobs sync.WaitGroup
}

// New creates an idle controller.
func New(engines EngineProvider, previews *preview.Registry, opts ...Option) *Controller {
	c := &Controller{
		engines:  engines,
		previews: previews,
		posters:  true,
		state:    InitialState(),
		subs:     make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a job is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SelectFile stages data as the next job's input and publishes it as the
// source preview. Both previous previews are released.
func (c *Controller) SelectFile(name, contentType string, data []byte) error {
	if len(data) == 0 {
		return &ValidationError{Message: "The selected file is empty."}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrBusy
	}

	c.previews.ReleaseAll()
	h := preview.NewHandle(name, contentType, data)
	c.previews.Replace(preview.Source, h)
	c.staged = &stagedFile{name: name, contentType: contentType, data: data}

	c.applyLocked(Event{Kind: EventFileSelected, Name: name, URL: h.URL()})
	logging.Info("Selected %s (%d bytes, %s)", name, len(data), contentType)
	return nil
}

// Convert runs a conversion of the staged file and returns once it has
// finished. started is false when a job was already in flight.
func (c *Controller) Convert(ctx context.Context) (started bool, err error) {
	j, err := c.begin()
	if j == nil {
		return false, err
	}
	return true, c.run(ctx, j)
}

// Start is Convert without waiting. ctx must outlive the caller's request.
func (c *Controller) Start(ctx context.Context) (started bool, err error) {
	j, err := c.begin()
	if j == nil {
		return false, err
	}

	c.jobs.Add(1)
	go func() {
		defer c.jobs.Done()
		_ = c.run(ctx, j)
	}()
	return true, nil
}

// Teardown releases both previews, forgets the staged file and returns to
// idle.
func (c *Controller) Teardown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrBusy
	}
	c.previews.ReleaseAll()
	c.staged = nil
	c.applyLocked(Event{Kind: EventReset})
	logging.Debug("Session torn down")
	return nil
}

// Close waits for a background job to finish, then releases all previews.
func (c *Controller) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.previews.ReleaseAll()
	c.staged = nil
	return nil
}

// Subscribe returns a channel that always holds the most recent state. Slow
// readers skip intermediate states. cancel closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			close(ch)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) apply(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(ev)
}

func (c *Controller) applyLocked(ev Event) {
	prev := c.state
	next := Transition(prev, ev)
	if next == prev {
		return
	}
	c.state = next

	if c.observer != nil {
		if prev.Stage != next.Stage {
			c.observer.StageChanged(prev.Stage, next.Stage)
		}
		if prev.Progress != next.Progress {
			c.observer.ProgressChanged(next.Progress)
		}
	}

	for ch := range c.subs {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}

// begin validates a conversion request and claims the single job slot. A nil
// job with a nil error means the request was ignored.
func (c *Controller) begin() (*job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.state.Stage.Busy() {
		logging.Debug("Ignoring convert request while %s", c.state.Stage)
		return nil, nil
	}
	if c.staged == nil {
		c.applyLocked(Event{Kind: EventValidationFailed, Message: NoFileMessage})
		if c.observer != nil {
			c.observer.JobFinished(OutcomeInvalid, 0)
		}
		return nil, &ValidationError{Message: NoFileMessage}
	}

	c.running = true
	return &job{
		id:      uuid.NewString(),
		file:    *c.staged,
		input:   InputName(c.staged.name),
		started: time.Now(),
	}, nil
}

func (c *Controller) run(ctx context.Context, j *job) error {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	logging.Info("Conversion %s started for %s", j.id, j.file.name)

	if !c.engines.Ready() {
		c.apply(Event{Kind: EventLoadingCore})
	}
	eng, err := c.engines.EnsureReady(ctx)
	if err != nil {
		return c.fail(j, err)
	}
	c.apply(Event{Kind: EventCoreReady})
	c.apply(Event{Kind: EventProcessing, JobID: j.id})

	result, err := c.transform(ctx, eng, j)
	if err != nil {
		return c.fail(j, err)
	}

	c.mu.Lock()
	c.previews.Replace(preview.Result, result)
	c.applyLocked(Event{Kind: EventCompleted, URL: result.URL(), PosterURL: result.PosterURL()})
	c.running = false
	c.mu.Unlock()

	duration := time.Since(j.started)
	logging.Info("Conversion %s completed in %v (%d bytes)", j.id, duration, result.Size())
	if c.observer != nil {
		c.observer.JobFinished(OutcomeSuccess, duration)
	}
	return nil
}

// transform stages the input, runs the filter job and wraps the output.
// Engine files are removed on every exit path.
func (c *Controller) transform(ctx context.Context, eng engine.Engine, j *job) (*preview.Handle, error) {
	for _, name := range []string{j.input, OutputName} {
		if err := eng.DeleteFile(ctx, name); err != nil && !errors.Is(err, engine.ErrNotFound) {
			logging.Debug("Could not remove stale %s: %v", name, err)
		}
	}
	defer discard(ctx, eng, j.input, OutputName)

	if err := eng.WriteFile(ctx, j.input, j.file.data); err != nil {
		return nil, &TransformationError{Step: "write input", Err: err}
	}

	stop := c.engines.Watch(func(percent int) {
		c.apply(Event{Kind: EventProgress, Percent: percent})
	})
	err := eng.Exec(ctx, TransformArgs(j.input))
	stop()
	if err != nil {
		return nil, &TransformationError{Step: "exec", Err: err}
	}

	c.apply(Event{Kind: EventFinalizing})

	out, err := eng.ReadFile(ctx, OutputName)
	if err != nil {
		return nil, &TransformationError{Step: "read output", Err: err}
	}
	if len(out) == 0 {
		return nil, &TransformationError{Step: "read output", Err: errors.New("the video engine produced an empty file")}
	}

	h := preview.NewHandle(ResultName(j.file.name), OutputContentType, out)
	if c.posters {
		attachPoster(ctx, eng, h)
	}
	return h, nil
}

func (c *Controller) fail(j *job, err error) error {
	var te *TransformationError
	if errors.As(err, &te) {
		logging.Error("Conversion %s failed during %s: %v", j.id, te.Step, te.Err)
	} else {
		logging.Error("Conversion %s failed: %v", j.id, err)
	}

	c.mu.Lock()
	c.applyLocked(Event{Kind: EventFailed, Message: Message(err)})
	c.running = false
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.JobFinished(OutcomeError, time.Since(j.started))
	}
	return err
}

// attachPoster extracts one frame of the output as the handle's poster.
// Failures only cost the poster.
func attachPoster(ctx context.Context, eng engine.Engine, h *preview.Handle) {
	defer discard(ctx, eng, PosterName)

	if err := eng.Exec(ctx, PosterArgs()); err != nil {
		logging.Debug("Poster extraction skipped: %v", err)
		return
	}
	frame, err := eng.ReadFile(ctx, PosterName)
	if err != nil {
		logging.Debug("Poster frame unavailable: %v", err)
		return
	}
	thumb, err := media.Thumbnail(frame, media.PosterWidth, media.PosterHeight)
	if err != nil {
		logging.Debug("Poster frame unusable: %v", err)
		return
	}
	h.SetPoster(thumb)
}

// discard removes engine files, ignoring failures.
func discard(ctx context.Context, eng engine.Engine, names ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, name := range names {
		if err := eng.DeleteFile(ctx, name); err != nil && !errors.Is(err, engine.ErrNotFound) {
			logging.Debug("Could not remove %s: %v", name, err)
		}
	}
}

// ResultName derives the download name of a converted clip.
func ResultName(original string) string {
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		base = "clip"
	}
	return base + "-filtered.mp4"
}
