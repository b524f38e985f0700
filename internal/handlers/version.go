package handlers

import (
	"net/http"

	"clipfilter/internal/startup"
)

// VersionResponse is the build information plus the detected ffmpeg version.
type VersionResponse struct {
	startup.BuildInfo
	Engine string `json:"engine,omitempty"`
}

// SetEngineVersion records the ffmpeg version reported at startup.
func (h *Handlers) SetEngineVersion(version string) {
	h.engineVersion = version
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, VersionResponse{
		BuildInfo: startup.GetBuildInfo(),
		Engine:    h.engineVersion,
	})
}
