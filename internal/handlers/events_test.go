package handlers

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipfilter/internal/pipeline"
)

// readEvent reads one server-sent event, skipping comment lines.
func readEvent(t *testing.T, r *bufio.Reader) (string, pipeline.State) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && event != "":
			var s pipeline.State
			if err := json.Unmarshal([]byte(data), &s); err != nil {
				t.Fatalf("decode event data %q: %v", data, err)
			}
			return event, s
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamEvents(t *testing.T) {
	env := newTestEnv(t, newCopyEngine())
	env.h.keepAlive = 10 * time.Millisecond

	ts := httptest.NewServer(env.router)
	defer ts.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	event, state := readEvent(t, r)
	if event != "state" || state.Stage != pipeline.StageIdle {
		t.Fatalf("first event = %s %+v, want current idle state", event, state)
	}

	if err := env.ctrl.SelectFile("clip.mp4", "video/mp4", sampleClip); err != nil {
		t.Fatal(err)
	}
	_, state = readEvent(t, r)
	if state.Stage != pipeline.StageReady || state.InputName != "clip.mp4" {
		t.Fatalf("second event = %+v, want ready", state)
	}

	env.h.CloseStreams()
	if _, err := io.Copy(io.Discard, r); err != nil {
		t.Errorf("stream should end cleanly after CloseStreams: %v", err)
	}
}
