package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// readProgress consumes FFmpeg's `-progress` key=value stream and reports
// out_time against total as a fraction. With an unknown total only the
// terminal progress=end is reported. It returns when r is exhausted.
func readProgress(r io.Reader, total time.Duration, emit func(float64)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}

		var outTime time.Duration
		switch strings.TrimSpace(key) {
		case "out_time_us":
			us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || us < 0 {
				continue
			}
			outTime = time.Duration(us) * time.Microsecond
		case "out_time_ms":
			// Despite the name, FFmpeg reports microseconds here as well.
			us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || us < 0 {
				continue
			}
			outTime = time.Duration(us) * time.Microsecond
		case "progress":
			if strings.TrimSpace(value) == "end" {
				emit(1)
			}
			continue
		default:
			continue
		}

		if total <= 0 {
			continue
		}
		fraction := float64(outTime) / float64(total)
		if fraction > 1 {
			fraction = 1
		}
		emit(fraction)
	}
	return scanner.Err()
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeDuration asks ffprobe for the container duration of the file at path.
func probeDuration(ctx context.Context, ffprobe, dir, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// inputArg returns the value following the first -i flag.
func inputArg(args []string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-i" {
			return args[i+1]
		}
	}
	return ""
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}

// lastLine returns the final non-empty line of s, which for FFmpeg is the
// line naming the failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
