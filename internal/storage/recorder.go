package storage

import (
	"fmt"

	"github.com/san-kum/tapesim/internal/runner"
)

// Recorder is a runner observer that keeps a trace row per snapshot.
type Recorder[S, Y comparable] struct {
	rows []TraceRow
}

func NewRecorder[S, Y comparable]() *Recorder[S, Y] {
	return &Recorder[S, Y]{rows: make([]TraceRow, 0)}
}

func (r *Recorder[S, Y]) OnStep(s runner.Snapshot[S, Y]) {
	heads := make([]int, len(s.Heads))
	copy(heads, s.Heads)
	r.rows = append(r.rows, TraceRow{Step: s.Step, State: fmt.Sprint(s.State), Heads: heads})
}

func (r *Recorder[S, Y]) Rows() []TraceRow { return r.rows }
