// Package tui renders a running machine as plain terminal text.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/tapesim/internal/machine"
	"github.com/san-kum/tapesim/internal/runner"
)

const (
	clearScreen = "\033[H\033[J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the whole machine on every snapshot. Clear disables the
// escape codes, which keeps the output usable as a plain trace.
type LiveRenderer[S, Y comparable] struct {
	w      io.Writer
	m      *machine.Machine[S, Y]
	window int
	format func(Y) string
	Clear  bool
}

func NewLiveRenderer[S, Y comparable](w io.Writer, m *machine.Machine[S, Y], window int, format func(Y) string) *LiveRenderer[S, Y] {
	return &LiveRenderer[S, Y]{w: w, m: m, window: window, format: format, Clear: true}
}

func (r *LiveRenderer[S, Y]) OnStep(s runner.Snapshot[S, Y]) {
	var sb strings.Builder
	if r.Clear {
		sb.WriteString(clearScreen)
	}
	fmt.Fprintf(&sb, "Step: %d State: %v\n", s.Step, s.State)
	for i := 0; i < r.m.NumTapes(); i++ {
		fmt.Fprintf(&sb, "Tape %d : %s\n", i, r.m.Render(i, r.window, r.format))
	}
	if !r.Clear {
		sb.WriteString("\n")
	}
	io.WriteString(r.w, sb.String())
}

// Begin hides the cursor while rendering in place.
func (r *LiveRenderer[S, Y]) Begin() {
	if r.Clear {
		io.WriteString(r.w, hideCursor)
	}
}

// End restores the cursor and prints how the run finished.
func (r *LiveRenderer[S, Y]) End(res *runner.Result[S]) {
	if r.Clear {
		io.WriteString(r.w, showCursor)
	}
	if res == nil {
		return
	}
	switch res.Reason {
	case runner.StopHalted:
		fmt.Fprintf(r.w, "\nMachine halted. State: %v (%s)\n", res.State, res.Outcome)
	case runner.StopCanceled:
		fmt.Fprintf(r.w, "\nStopped manually at step %d\n", res.Steps)
	case runner.StopMaxSteps:
		fmt.Fprintf(r.w, "\nStep limit reached at step %d. State: %v\n", res.Steps, res.State)
	case runner.StopError:
		fmt.Fprintf(r.w, "\nStep %d failed. State: %v\n", res.Steps, res.State)
	}
}
