// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Initial reference and motivation taken from the progress bar wiring in
// https://github.com/vjache/cie/blob/main/cmd/cie/index.go

package progress

import (
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// TerminalSink renders one progress bar per collection, swapping the bar
// (and its description) whenever the collection's phase changes, the same
// pattern vjache-cie uses around its own pipeline callback. On a non-TTY
// (CI logs, piped output) rendering is skipped entirely and the sink only
// accumulates the byte counts used by Summary.
type TerminalSink struct {
	mu      sync.Mutex
	tty     bool
	bars    map[string]*progressbar.ProgressBar
	phases  map[string]Phase
	summary map[string]int64
}

// NewTerminalSink constructs a sink bound to the process's stdout,
// detecting TTY-ness once at construction time.
func NewTerminalSink() *TerminalSink {
	return &TerminalSink{
		tty:     isatty.IsTerminal(os.Stdout.Fd()),
		bars:    make(map[string]*progressbar.ProgressBar),
		phases:  make(map[string]Phase),
		summary: make(map[string]int64),
	}
}

func (s *TerminalSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Bytes > 0 {
		s.summary[e.Collection] += e.Bytes
	}

	if !s.tty {
		return
	}

	if e.Phase == PhaseDone || e.Phase == PhaseFailed {
		if bar, ok := s.bars[e.Collection]; ok {
			_ = bar.Finish()
			delete(s.bars, e.Collection)
			delete(s.phases, e.Collection)
		}
		return
	}

	bar, ok := s.bars[e.Collection]
	if !ok || s.phases[e.Collection] != e.Phase {
		if bar != nil {
			_ = bar.Finish()
		}
		bar = progressbar.NewOptions64(e.Total,
			progressbar.OptionSetDescription(fmt.Sprintf("%s: %s", e.Collection, e.Phase)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		s.bars[e.Collection] = bar
		s.phases[e.Collection] = e.Phase
	}
	_ = bar.Set64(e.Processed)
}

// Summary returns a human-readable, one-line-per-collection report of
// total bytes written, suitable for printing after Run() completes.
func (s *TerminalSink) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := ""
	for col, bytes := range s.summary {
		out += fmt.Sprintf("%s: %s\n", col, humanize.Bytes(uint64(bytes)))
	}
	return out
}
