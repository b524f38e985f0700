package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterAPI adds the pipeline API routes to r.
func (h *Handlers) RegisterAPI(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/events", h.StreamEvents).Methods("GET")
	api.HandleFunc("/file", h.UploadFile).Methods("POST")
	api.HandleFunc("/convert", h.StartConversion).Methods("POST")
	api.HandleFunc("/session", h.EndSession).Methods("DELETE", "POST")
	api.HandleFunc("/preview/{id}", h.GetPreview).Methods("GET", "HEAD")
	api.HandleFunc("/preview/{id}/poster", h.GetPoster).Methods("GET", "HEAD")
	api.HandleFunc("/version", h.GetVersion).Methods("GET")
}

// RegisterHealth adds the probe and version routes to r.
func (h *Handlers) RegisterHealth(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
}
