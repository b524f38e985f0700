package handlers

import (
	"net/http"
	"runtime"
	"time"

	"clipfilter/internal/memory"
	"clipfilter/internal/startup"
)

// usageReporter is the optional part of MemoryGate that *memory.Monitor adds.
type usageReporter interface {
	Usage() memory.Usage
}

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Pipeline info
	Stage        string `json:"stage"`
	Busy         bool   `json:"busy"`
	LivePreviews int    `json:"livePreviews"`

	// Engine info
	EngineReady   bool   `json:"engineReady"`
	EngineLoading bool   `json:"engineLoading"`
	EngineError   string `json:"engineError,omitempty"`

	MemoryPaused bool    `json:"memoryPaused"`
	MemoryUsage  float64 `json:"memoryUsage,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The engine loads
// lazily, so an unloaded engine is still healthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:        statusHealthy,
		Version:       startup.Version,
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
		Stage:         h.controller.Snapshot().Stage.String(),
		Busy:          h.controller.Busy(),
		LivePreviews:  h.previews.Live(),
		EngineReady:   h.engine.Ready(),
		EngineLoading: h.engine.Loading(),
		MemoryPaused:  h.memory != nil && h.memory.IsPaused(),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutine:  runtime.NumGoroutine(),
	}

	if err := h.engine.Err(); err != nil {
		response.EngineError = err.Error()
		response.Status = statusDegraded
	}
	if u, ok := h.memory.(usageReporter); ok {
		response.MemoryUsage = u.Usage().Ratio
	}
	if response.MemoryPaused {
		response.Status = statusDegraded
	}
	response.Ready = response.Status == statusHealthy

	writeJSONStatus(w, http.StatusOK, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 503 once the engine has failed to bootstrap, since
// the failure is permanent for this process, or while uploads are paused.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if err := h.engine.Err(); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": err.Error(),
		})
		return
	}
	if h.memory != nil && h.memory.IsPaused() {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "memory pressure",
		})
		return
	}
	writeJSONStatus(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
