package handlers

import (
	"context"
	"sync"
	"time"

	"clipfilter/internal/pipeline"
	"clipfilter/internal/preview"
	"clipfilter/internal/startup"
)

// EngineStatus reports the shared engine's lifecycle. *session.Session
// satisfies it.
type EngineStatus interface {
	Ready() bool
	Loading() bool
	Err() error
}

// MemoryGate reports memory pressure. *memory.Monitor satisfies it.
type MemoryGate interface {
	IsPaused() bool
}

const defaultKeepAlive = 15 * time.Second

type Handlers struct {
	controller *pipeline.Controller
	previews   *preview.Registry
	engine     EngineStatus
	memory     MemoryGate
	maxUpload  int64
	startTime  time.Time

	engineVersion string

	// jobCtx outlives individual requests so a conversion started by
	// POST /api/convert keeps running after the response is sent.
	jobCtx context.Context

	keepAlive   time.Duration
	streamsDone chan struct{}
	streamsOnce sync.Once
}

func New(jobCtx context.Context, ctrl *pipeline.Controller, previews *preview.Registry, eng EngineStatus, mem MemoryGate, config *startup.Config) *Handlers {
	return &Handlers{
		controller:  ctrl,
		previews:    previews,
		engine:      eng,
		memory:      mem,
		maxUpload:   config.MaxUploadBytes(),
		startTime:   time.Now(),
		jobCtx:      jobCtx,
		keepAlive:   defaultKeepAlive,
		streamsDone: make(chan struct{}),
	}
}

// CloseStreams ends every open event stream. Register it with
// http.Server.RegisterOnShutdown, since Shutdown does not interrupt
// long-lived responses.
func (h *Handlers) CloseStreams() {
	h.streamsOnce.Do(func() { close(h.streamsDone) })
}
