package startup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnv = []string{
	"CONFIG_FILE", "PORT", "METRICS_PORT", "METRICS_ENABLED", "WORK_DIR",
	"FFMPEG_PATH", "FFPROBE_PATH", "MAX_UPLOAD_MB", "ENGINE_TIMEOUT", "POSTERS",
	"LOG_STATIC_FILES", "LOG_HEALTH_CHECKS",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clipfilter.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}

	if cfg.Port != "8080" || cfg.MetricsPort != "9090" || !cfg.MetricsEnabled {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.MaxUploadMB != 200 || cfg.MaxUploadBytes() != 200<<20 {
		t.Errorf("MaxUploadMB = %d", cfg.MaxUploadMB)
	}
	if cfg.EngineTimeout != 2*time.Minute {
		t.Errorf("EngineTimeout = %v, want 2m", cfg.EngineTimeout)
	}
	if !cfg.Posters || cfg.LogStaticFiles || !cfg.LogHealthChecks {
		t.Errorf("unexpected flag defaults: %+v", cfg)
	}
	if !filepath.IsAbs(cfg.WorkDir) {
		t.Errorf("WorkDir should be absolute, got %q", cfg.WorkDir)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want empty", cfg.ConfigFile)
	}
}

func TestReadConfigEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("WORK_DIR", "relative/work")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("MAX_UPLOAD_MB", "50")
	t.Setenv("ENGINE_TIMEOUT", "45s")
	t.Setenv("POSTERS", "0")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}

	if cfg.Port != "3000" || cfg.MetricsEnabled {
		t.Errorf("server settings not taken from env: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.WorkDir, filepath.Join("relative", "work")) || !filepath.IsAbs(cfg.WorkDir) {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" || cfg.MaxUploadMB != 50 || cfg.EngineTimeout != 45*time.Second || cfg.Posters {
		t.Errorf("engine settings not taken from env: %+v", cfg)
	}

	res := cfg.Resources()
	if res.FFmpeg[0] != "/opt/ffmpeg/bin/ffmpeg" || res.WorkDir != cfg.WorkDir {
		t.Errorf("Resources() = %+v", res)
	}
}

func TestReadConfigInvalidValuesFallBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("METRICS_ENABLED", "sometimes")
	t.Setenv("ENGINE_TIMEOUT", "forever")
	t.Setenv("MAX_UPLOAD_MB", "lots")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}
	if !cfg.MetricsEnabled || cfg.EngineTimeout != 2*time.Minute || cfg.MaxUploadMB != 200 {
		t.Errorf("invalid values should fall back to defaults: %+v", cfg)
	}
}

func TestReadConfigRejectsNonPositiveUploadCap(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "0")

	if _, err := ReadConfig(); err == nil {
		t.Fatal("expected error for MAX_UPLOAD_MB=0")
	}
}

func TestReadConfigFileLayering(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
port = "9000"
max_upload_mb = 64

[engine]
work_dir = "/srv/clipfilter"
ffprobe_path = "/usr/local/bin/ffprobe"
timeout_seconds = 30
posters = false

[logging]
static_files = true
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_UPLOAD_MB", "32")

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}

	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
	if cfg.Port != "9000" || cfg.WorkDir != "/srv/clipfilter" || cfg.FFprobePath != "/usr/local/bin/ffprobe" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.EngineTimeout != 30*time.Second || cfg.Posters || !cfg.LogStaticFiles {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.MetricsPort != "9090" || !cfg.MetricsEnabled || !cfg.LogHealthChecks {
		t.Errorf("defaults lost: %+v", cfg)
	}
	// Environment wins over the file.
	if cfg.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB = %d, want env value 32", cfg.MaxUploadMB)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}
	if cfg.ConfigFile != "" || cfg.Port != "8080" {
		t.Errorf("missing file should fall back to defaults: %+v", cfg)
	}
}

func TestReadConfigInvalidFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", writeConfigFile(t, "port = [unterminated"))

	if _, err := ReadConfig(); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
