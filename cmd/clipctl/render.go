package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"clipfilter/internal/pipeline"

	"github.com/mattn/go-isatty"
)

const barWidth = 30

// progressRenderer prints conversion states. On a terminal it redraws a
// single bar line; otherwise it prints a line per stage or per 10% step.
type progressRenderer struct {
	w     io.Writer
	tty   bool
	drawn bool

	lastStage  pipeline.Stage
	lastBucket int
	started    bool
}

func newProgressRenderer(w io.Writer, tty bool) *progressRenderer {
	return &progressRenderer{w: w, tty: tty, lastBucket: -1}
}

func (r *progressRenderer) update(s pipeline.State) {
	if r.tty {
		filled := s.Progress * barWidth / 100
		if s.Stage == pipeline.StageComplete {
			filled = barWidth
		}
		fmt.Fprintf(r.w, "\r[%s%s] %3d%% %-40s",
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), s.Progress, s.StageMessage)
		r.drawn = true
		return
	}

	bucket := s.Progress / 10
	if r.started && s.Stage == r.lastStage && bucket == r.lastBucket {
		return
	}
	r.started = true
	r.lastStage = s.Stage
	r.lastBucket = bucket
	fmt.Fprintf(r.w, "%-11s %3d%% %s\n", s.Stage, s.Progress, s.StageMessage)
}

func (r *progressRenderer) finish() {
	if r.tty && r.drawn {
		fmt.Fprintln(r.w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
