package preview

import (
	"sync"

	"clipfilter/internal/logging"
)

// Observer records handle lifecycle events. Implementations are provided by
// the metrics package to avoid an import cycle.
type Observer interface {
	HandleAllocated(slot Slot, bytes int64)
	HandleReleased(slot Slot, bytes int64)
}

// Registry owns the source and result slots.
type Registry struct {
	mu       sync.RWMutex
	slots    [2]*Handle
	observer Observer
}

// NewRegistry creates an empty registry. observer may be nil.
func NewRegistry(observer Observer) *Registry {
	return &Registry{observer: observer}
}

// Replace releases the handle currently in slot, then stores h. A nil h
// leaves the slot empty.
func (r *Registry) Replace(slot Slot, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseLocked(slot)
	r.slots[slot] = h
	if h != nil {
		logging.Debug("Preview %s allocated: %s (%d bytes)", slot, h.ID(), h.Size())
		if r.observer != nil {
			r.observer.HandleAllocated(slot, h.Size())
		}
	}
}

// Release empties slot, releasing its handle if present.
func (r *Registry) Release(slot Slot) {
	r.Replace(slot, nil)
}

// ReleaseAll empties both slots.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, slot := range Slots {
		r.releaseLocked(slot)
	}
}

func (r *Registry) releaseLocked(slot Slot) {
	old := r.slots[slot]
	if old == nil {
		return
	}
	r.slots[slot] = nil

	freed, ok := old.release()
	if !ok {
		return
	}
	logging.Debug("Preview %s released: %s", slot, old.ID())
	if r.observer != nil {
		r.observer.HandleReleased(slot, freed)
	}
}

// Get returns the live handle in slot, or nil.
func (r *Registry) Get(slot Slot) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[slot]
}

// Lookup finds a live handle by id.
func (r *Registry) Lookup(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.slots {
		if h != nil && h.ID() == id && !h.Released() {
			return h, true
		}
	}
	return nil, false
}

// Live returns the number of occupied slots.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, h := range r.slots {
		if h != nil {
			n++
		}
	}
	return n
}
