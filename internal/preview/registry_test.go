package preview

import (
	"sync"
	"testing"
)

type recordingObserver struct {
	mu        sync.Mutex
	allocated map[Slot]int64
	released  map[Slot]int64
	releases  int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		allocated: make(map[Slot]int64),
		released:  make(map[Slot]int64),
	}
}

func (o *recordingObserver) HandleAllocated(slot Slot, bytes int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.allocated[slot] += bytes
}

func (o *recordingObserver) HandleReleased(slot Slot, bytes int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.released[slot] += bytes
	o.releases++
}

func TestReplaceReleasesPrevious(t *testing.T) {
	obs := newRecordingObserver()
	r := NewRegistry(obs)

	first := NewHandle("a.mp4", "video/mp4", []byte("first"))
	second := NewHandle("b.mp4", "video/mp4", []byte("second"))

	r.Replace(Source, first)
	if got := r.Get(Source); got != first {
		t.Fatalf("Get(Source) = %v, want first handle", got)
	}

	r.Replace(Source, second)
	if !first.Released() {
		t.Error("previous handle should be released on replacement")
	}
	if _, ok := first.Data(); ok {
		t.Error("released handle must not expose data")
	}
	if _, ok := r.Lookup(first.ID()); ok {
		t.Error("released handle must not be found by Lookup")
	}
	if got, ok := r.Lookup(second.ID()); !ok || got != second {
		t.Error("current handle should be found by Lookup")
	}
	if obs.releases != 1 || obs.released[Source] != int64(len("first")) {
		t.Errorf("observer releases = %d bytes = %d", obs.releases, obs.released[Source])
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	r := NewRegistry(nil)
	src := NewHandle("in.mov", "video/quicktime", []byte("src"))
	res := NewHandle("output.mp4", "video/mp4", []byte("res"))

	r.Replace(Source, src)
	r.Replace(Result, res)
	r.Release(Result)

	if res.Released() != true {
		t.Error("result handle should be released")
	}
	if src.Released() {
		t.Error("source handle must survive result release")
	}
	if r.Live() != 1 {
		t.Errorf("Live() = %d, want 1", r.Live())
	}
}

func TestReleaseAllIsIdempotent(t *testing.T) {
	obs := newRecordingObserver()
	r := NewRegistry(obs)

	src := NewHandle("in.webm", "video/webm", []byte("abc"))
	res := NewHandle("output.mp4", "video/mp4", []byte("defg"))
	r.Replace(Source, src)
	r.Replace(Result, res)

	r.ReleaseAll()
	r.ReleaseAll()
	r.Release(Source)

	if !src.Released() || !res.Released() {
		t.Fatal("ReleaseAll should release both slots")
	}
	if r.Live() != 0 {
		t.Errorf("Live() = %d, want 0", r.Live())
	}
	if obs.releases != 2 {
		t.Errorf("expected exactly two releases, got %d", obs.releases)
	}
	if obs.allocated[Source] != obs.released[Source] || obs.allocated[Result] != obs.released[Result] {
		t.Errorf("allocation and release accounting differ: %v vs %v", obs.allocated, obs.released)
	}
}

func TestReplaceWithSameHandleTwice(t *testing.T) {
	r := NewRegistry(nil)
	h := NewHandle("a.mp4", "video/mp4", []byte("x"))
	r.Replace(Source, h)
	r.Release(Source)
	r.Release(Source)

	if !h.Released() {
		t.Error("handle should be released")
	}
	if r.Get(Source) != nil {
		t.Error("slot should be empty")
	}
}

func TestHandleAccessors(t *testing.T) {
	h := NewHandle("clip.mov", "video/quicktime", []byte("12345"))
	if h.ID() == "" {
		t.Fatal("expected a generated id")
	}
	if h.URL() != "/api/preview/"+h.ID() {
		t.Errorf("URL() = %q", h.URL())
	}
	if h.PosterURL() != "" {
		t.Errorf("PosterURL() without poster = %q, want empty", h.PosterURL())
	}
	if h.Size() != 5 {
		t.Errorf("Size() = %d, want 5", h.Size())
	}
	if h.Created().IsZero() {
		t.Error("Created() should be set")
	}

	h.SetPoster([]byte{0xff, 0xd8})
	if h.PosterURL() != h.URL()+"/poster" {
		t.Errorf("PosterURL() = %q", h.PosterURL())
	}
	if p, ok := h.Poster(); !ok || len(p) != 2 {
		t.Errorf("Poster() = %v, %v", p, ok)
	}

	freed, ok := h.release()
	if !ok || freed != 7 {
		t.Errorf("release() = %d, %v; want 7, true", freed, ok)
	}
	if _, ok := h.release(); ok {
		t.Error("second release should be a no-op")
	}
	if h.PosterURL() != "" {
		t.Error("released handle should not advertise a poster")
	}
	h.SetPoster([]byte{1})
	if _, ok := h.Poster(); ok {
		t.Error("SetPoster after release must not resurrect data")
	}
}

func TestSlotString(t *testing.T) {
	if Source.String() != "source" || Result.String() != "result" {
		t.Errorf("unexpected slot names %q %q", Source, Result)
	}
	if Slot(7).String() != "unknown" {
		t.Errorf("Slot(7).String() = %q", Slot(7).String())
	}
}

func TestConcurrentReplace(t *testing.T) {
	r := NewRegistry(newRecordingObserver())
	var wg sync.WaitGroup
	handles := make([]*Handle, 50)
	for i := range handles {
		handles[i] = NewHandle("c.mp4", "video/mp4", []byte("data"))
	}

	for _, h := range handles {
		wg.Add(1)
		go func(h *Handle) {
			defer wg.Done()
			r.Replace(Result, h)
		}(h)
	}
	wg.Wait()

	live := 0
	for _, h := range handles {
		if !h.Released() {
			live++
		}
	}
	if live != 1 {
		t.Errorf("expected exactly one unreleased handle, got %d", live)
	}
}
