package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"clipfilter/internal/logging"
	"clipfilter/internal/mediatypes"
	"clipfilter/internal/metrics"
	"clipfilter/internal/pipeline"
)

// multipartOverhead is the allowance for multipart framing on top of the
// upload cap.
const multipartOverhead = 1 << 20

// GetState returns the current pipeline state.
// GET /api/state
func (h *Handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, h.controller.Snapshot())
}

// UploadFile stages the multipart field "file" as the next conversion input.
// POST /api/file
func (h *Handlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h.memory != nil && h.memory.IsPaused() {
		rejectUpload(w, "memory", "The server is low on memory. Try again shortly.", http.StatusServiceUnavailable)
		return
	}
	if h.controller.Busy() {
		rejectUpload(w, "busy", pipeline.ErrBusy.Error(), http.StatusConflict)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			rejectUpload(w, "too_large", tooLargeMessage(h.maxUpload), http.StatusRequestEntityTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			rejectUpload(w, "invalid", pipeline.NoFileMessage, http.StatusBadRequest)
		default:
			logging.Debug("Upload rejected: %v", err)
			rejectUpload(w, "invalid", "The upload could not be read.", http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		rejectUpload(w, "too_large", tooLargeMessage(h.maxUpload), http.StatusRequestEntityTooLarge)
		return
	}

	container, ok := mediatypes.Detect(header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		rejectUpload(w, "unsupported", "Unsupported file type. Choose an MP4, MOV or WebM video.", http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logging.Warn("Failed to read upload %s: %v", header.Filename, err)
		rejectUpload(w, "invalid", "The upload could not be read.", http.StatusBadRequest)
		return
	}

	var validationErr *pipeline.ValidationError
	err = h.controller.SelectFile(header.Filename, container.MimeType, data)
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		rejectUpload(w, "busy", err.Error(), http.StatusConflict)
		return
	case errors.As(err, &validationErr):
		rejectUpload(w, "invalid", validationErr.Message, http.StatusBadRequest)
		return
	case err != nil:
		logging.Error("Failed to stage upload %s: %v", header.Filename, err)
		writeJSONError(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	metrics.UploadBytes.Observe(float64(len(data)))
	writeJSONStatus(w, http.StatusOK, h.controller.Snapshot())
}

func rejectUpload(w http.ResponseWriter, status, message string, code int) {
	metrics.UploadsTotal.WithLabelValues(status).Inc()
	writeJSONError(w, message, code)
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("The file is larger than the %d MB limit.", limit>>20)
}

// StartConversion starts converting the staged file in the background.
// POST /api/convert
func (h *Handlers) StartConversion(w http.ResponseWriter, _ *http.Request) {
	started, err := h.controller.Start(h.jobCtx)

	var validationErr *pipeline.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, validationErr.Message, http.StatusBadRequest)
	case err != nil:
		logging.Error("Failed to start conversion: %v", err)
		writeJSONError(w, pipeline.Message(err), http.StatusInternalServerError)
	case !started:
		writeJSONError(w, pipeline.ErrBusy.Error(), http.StatusConflict)
	default:
		writeJSONStatus(w, http.StatusAccepted, h.controller.Snapshot())
	}
}

// EndSession releases both previews and returns the pipeline to idle. POST
// is accepted so the page can call it from navigator.sendBeacon.
// DELETE /api/session
func (h *Handlers) EndSession(w http.ResponseWriter, _ *http.Request) {
	if err := h.controller.Teardown(); err != nil {
		writeJSONError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSONStatus(w, http.StatusOK, h.controller.Snapshot())
}

// StreamEvents pushes every state change as a server-sent "state" event.
// GET /api/events
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	states, cancel := h.controller.Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.streamsDone:
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if err := writeEvent(w, "state", state); err != nil {
				logging.Debug("Event stream closed: %v", err)
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
