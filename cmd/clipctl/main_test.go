package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"clipfilter/internal/pipeline"
)

const stubFFmpeg = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-stub"
  exit 0
fi
in=""
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-i" ]; then in="$a"; fi
  prev="$a"
  out="$a"
done
echo "out_time_us=500000"
echo "progress=continue"
echo "progress=end"
cp "$in" "$out"
`

const stubFFprobe = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffprobe version 6.1-stub"
  exit 0
fi
echo '{"format":{"duration":"1.000000"}}'
`

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
}

// stubEngine points the configuration at stub binaries and a private work
// directory.
func stubEngine(t *testing.T) {
	t.Helper()
	bin := t.TempDir()
	for name, script := range map[string]string{"ffmpeg": stubFFmpeg, "ffprobe": stubFFprobe} {
		path := filepath.Join(bin, name)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			t.Fatalf("write %s stub: %v", name, err)
		}
		t.Setenv(strings.ToUpper(name)+"_PATH", path)
	}
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("WORK_DIR", t.TempDir())
	t.Setenv("MAX_UPLOAD_MB", "1")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "clipctl ") || !strings.Contains(out, runtime.GOOS) {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Binary", "Status"}, [][]string{{"ffmpeg", "ok"}, {"ffprobe"}})
	for _, want := range []string{"Binary", "Status", "ffmpeg", "ok", "ffprobe", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil) != "" {
		t.Error("empty headers should render nothing")
	}
}

func TestProgressRendererPlain(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf, false)

	r.update(pipeline.State{Stage: pipeline.StageProcessing, Progress: 11, StageMessage: pipeline.MessageProcessing})
	r.update(pipeline.State{Stage: pipeline.StageProcessing, Progress: 15, StageMessage: pipeline.MessageProcessing})
	r.update(pipeline.State{Stage: pipeline.StageProcessing, Progress: 42, StageMessage: pipeline.MessageProcessing})
	r.update(pipeline.State{Stage: pipeline.StageComplete, Progress: 100, StageMessage: pipeline.MessageComplete})
	r.finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "complete") || !strings.Contains(lines[2], "100%") {
		t.Errorf("last line = %q", lines[2])
	}
}

func TestProgressRendererTerminal(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf, true)

	r.update(pipeline.State{Stage: pipeline.StageProcessing, Progress: 50})
	r.update(pipeline.State{Stage: pipeline.StageComplete, Progress: 100})
	r.finish()

	out := buf.String()
	if strings.Count(out, "\r") != 2 || !strings.HasSuffix(out, "\n") {
		t.Errorf("unexpected terminal output: %q", out)
	}
	if !strings.Contains(out, "["+strings.Repeat("#", barWidth)+"]") {
		t.Errorf("expected a full bar on completion: %q", out)
	}
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestCheckCommand(t *testing.T) {
	skipOnWindows(t)
	stubEngine(t)

	out, _, err := execute(t, "check")
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if strings.Count(out, "6.1-stub") != 2 {
		t.Errorf("expected both stub versions in output:\n%s", out)
	}
}

func TestCheckCommandMissingBinary(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("WORK_DIR", t.TempDir())
	t.Setenv("PATH", t.TempDir())
	t.Setenv("FFMPEG_PATH", "clearly-not-present-ffmpeg")
	t.Setenv("FFPROBE_PATH", "clearly-not-present-ffprobe")

	out, _, err := execute(t, "check")
	if err == nil || !strings.Contains(err.Error(), "2 of 2") {
		t.Fatalf("expected both binaries missing, got %v", err)
	}
	if !strings.Contains(out, "missing") {
		t.Errorf("expected missing rows:\n%s", out)
	}
}

func TestConvertCommand(t *testing.T) {
	skipOnWindows(t)
	stubEngine(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "holiday.mov")
	if err := os.WriteFile(input, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := execute(t, "convert", input)
	if err != nil {
		t.Fatalf("convert error: %v (stderr %q)", err, stderr)
	}

	dest := filepath.Join(dir, "holiday-filtered.mp4")
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("expected output at %s: %v", dest, err)
	}
	if string(data) != "frames" {
		t.Errorf("output = %q, want the stub's copy of the input", data)
	}
	if !strings.Contains(out, "Wrote "+dest) {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(stderr, "complete") {
		t.Errorf("expected progress on stderr, got %q", stderr)
	}
}

func TestConvertCommandRejections(t *testing.T) {
	stubEngine(t)
	dir := t.TempDir()

	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(dir, "big.mp4")
	if err := os.WriteFile(big, make([]byte, 1<<20+1), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.mp4")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unsupported", []string{"convert", notes}, "unsupported container"},
		{"too large", []string{"convert", big}, "1 MB limit"},
		{"empty", []string{"convert", empty}, "empty"},
		{"missing", []string{"convert", filepath.Join(dir, "gone.mp4")}, "read input"},
		{"no argument", []string{"convert"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
