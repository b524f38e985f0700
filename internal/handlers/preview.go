package handlers

import (
	"bytes"
	"mime"
	"net/http"

	"clipfilter/internal/preview"

	"github.com/gorilla/mux"
)

// GetPreview serves a live preview buffer with Range support.
// GET /api/preview/{id}
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.previews.Lookup(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Preview not found", http.StatusNotFound)
		return
	}
	data, ok := handle.Data()
	if !ok {
		writeJSONError(w, "Preview not found", http.StatusNotFound)
		return
	}

	servePreview(w, r, handle, handle.Name(), handle.ContentType(), data)
}

// GetPoster serves the poster frame attached to a preview.
// GET /api/preview/{id}/poster
func (h *Handlers) GetPoster(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.previews.Lookup(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Preview not found", http.StatusNotFound)
		return
	}
	poster, ok := handle.Poster()
	if !ok {
		writeJSONError(w, "Poster not available", http.StatusNotFound)
		return
	}

	servePreview(w, r, handle, "poster.jpg", "image/jpeg", poster)
}

func servePreview(w http.ResponseWriter, r *http.Request, handle *preview.Handle, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-cache")
	if disposition := mime.FormatMediaType("inline", map[string]string{"filename": name}); disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	http.ServeContent(w, r, name, handle.Created(), bytes.NewReader(data))
}
