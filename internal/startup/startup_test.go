package startup

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"clipfilter/internal/engine"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version != Version || info.Commit == "" || info.BuildTime == "" {
		t.Errorf("unexpected build info: %+v", info)
	}
	if info.GoVersion == "" || info.OS == "" || info.Arch == "" {
		t.Errorf("runtime fields should be populated: %+v", info)
	}
}

func TestApplyVCS(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	info := BuildInfo{Commit: "unknown", BuildTime: "unknown"}
	applyVCS(&info, settings)
	if info.Commit != "0123456789ab-dirty" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("applyVCS() = %+v", info)
	}

	stamped := BuildInfo{Commit: "release", BuildTime: "yesterday"}
	applyVCS(&stamped, settings)
	if stamped.Commit != "release" || stamped.BuildTime != "yesterday" {
		t.Errorf("ldflags values must win, got %+v", stamped)
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}

	router := mux.NewRouter()
	router.HandleFunc("/api/state", noop).Methods("GET").Name("state")
	router.HandleFunc("/api/file", noop).Methods("POST")
	router.HandleFunc("/api/preview/{id}", noop).Methods("GET", "HEAD")
	router.PathPrefix("/").HandlerFunc(noop)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error: %v", err)
	}

	if len(routes) != 5 {
		t.Fatalf("got %d routes, want 5: %+v", len(routes), routes)
	}
	if routes[0].Name != "state" || routes[0].Method != "GET" || routes[0].Path != "/api/state" {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if last := routes[len(routes)-1]; last.Method != "*" || last.Path != "/" {
		t.Errorf("catch-all route = %+v", last)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/preview/{id}", "api/preview"},
		{"/api/state", "api/state"},
		{"/healthz", "healthz"},
		{"/", ""},
		{"/api", "api"},
		{"/api/", "api"},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "work")

	if err := ensureDirectory(dir, "work"); err != nil {
		t.Fatalf("ensureDirectory() create error: %v", err)
	}
	if err := ensureDirectory(dir, "work"); err != nil {
		t.Fatalf("ensureDirectory() existing error: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "work"); err == nil {
		t.Error("expected error for a regular file")
	}
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()
	if err := testWriteAccess(dir); err != nil {
		t.Fatalf("testWriteAccess() error: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("write test file should be removed, found %d entries", len(entries))
	}
	if err := testWriteAccess(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestCheckEngineReportsMissingBinaries(t *testing.T) {
	res := engine.Resources{
		FFmpeg:       []string{"clearly-not-present-ffmpeg"},
		FFprobe:      []string{"clearly-not-present-ffprobe"},
		ProbeTimeout: time.Second,
	}

	statuses := CheckEngine(context.Background(), res)
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	for _, s := range statuses {
		if s.Available {
			t.Errorf("%s should be unavailable", s.Name)
		}
	}
	if statuses[0].Name != "ffmpeg" || statuses[1].Name != "ffprobe" {
		t.Errorf("unexpected order: %s, %s", statuses[0].Name, statuses[1].Name)
	}
}
