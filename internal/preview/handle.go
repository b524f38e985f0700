package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Slot names one of the two preview positions.
type Slot int

const (
	// Source holds the clip the user selected.
	Source Slot = iota
	// Result holds the transformed clip.
	Result
)

var slotNames = [...]string{Source: "source", Result: "result"}

// Slots lists every slot in a stable order.
var Slots = []Slot{Source, Result}

func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return "unknown"
}

// Handle is an ownership-scoped reference to an in-memory media buffer.
type Handle struct {
	id          string
	name        string
	contentType string
	created     time.Time

	mu       sync.RWMutex
	data     []byte
	poster   []byte
	released bool
}

// NewHandle wraps data as a displayable media resource.
func NewHandle(name, contentType string, data []byte) *Handle {
	return &Handle{
		id:          uuid.NewString(),
		name:        name,
		contentType: contentType,
		created:     time.Now(),
		data:        data,
	}
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string { return h.id }

// Name returns the file name the buffer should be presented under.
func (h *Handle) Name() string { return h.name }

// ContentType returns the MIME type of the buffer.
func (h *Handle) ContentType() string { return h.contentType }

// Created returns the allocation time.
func (h *Handle) Created() time.Time { return h.created }

// URL returns the locator the presentation layer dereferences.
func (h *Handle) URL() string {
	return "/api/preview/" + h.id
}

// PosterURL returns the poster locator, or "" when no poster is attached.
func (h *Handle) PosterURL() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released || len(h.poster) == 0 {
		return ""
	}
	return h.URL() + "/poster"
}

// Data returns the buffer, or false once the handle has been released.
func (h *Handle) Data() ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return nil, false
	}
	return h.data, true
}

// Size returns the buffer length, or 0 once released.
func (h *Handle) Size() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return int64(len(h.data) + len(h.poster))
}

// SetPoster attaches a JPEG poster image. Attach it before the handle is
// stored in a Registry so size accounting stays balanced.
func (h *Handle) SetPoster(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.released {
		h.poster = jpeg
	}
}

// Poster returns the poster image, or false when absent or released.
func (h *Handle) Poster() ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released || len(h.poster) == 0 {
		return nil, false
	}
	return h.poster, true
}

// Released reports whether release has run.
func (h *Handle) Released() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}

// release drops the buffers and reports the bytes freed. Only the first call
// has an effect.
func (h *Handle) release() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return 0, false
	}
	freed := int64(len(h.data) + len(h.poster))
	h.released = true
	h.data = nil
	h.poster = nil
	return freed, true
}
