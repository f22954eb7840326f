// Package runner drives a machine until it halts, a step bound is reached or
// the context is cancelled.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/tapesim/internal/logging"
	"github.com/san-kum/tapesim/internal/machine"
)

type Runner[S, Y comparable] struct {
	m         *machine.Machine[S, Y]
	logger    *slog.Logger
	observers []Observer[S, Y]
}

// New wraps m. A nil logger discards output.
func New[S, Y comparable](m *machine.Machine[S, Y], logger *slog.Logger) *Runner[S, Y] {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner[S, Y]{
		m:         m,
		logger:    logger,
		observers: make([]Observer[S, Y], 0),
	}
}

func (r *Runner[S, Y]) AddObserver(o Observer[S, Y]) { r.observers = append(r.observers, o) }

func (r *Runner[S, Y]) Machine() *machine.Machine[S, Y] { return r.m }

// Run steps the machine. Observers see the configuration once before the first
// step and after every completed step. Whatever stops the loop, the machine is
// left at a step boundary and a later Run resumes from there.
func (r *Runner[S, Y]) Run(ctx context.Context, opts Options) (*Result[S], error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result[S]{Reason: StopHalted}

	r.logger.Info("run started",
		"state", r.m.State(),
		"step", r.m.Steps(),
		"tapes", r.m.NumTapes(),
		"max_steps", opts.MaxSteps,
	)
	r.notify()

	var runErr error
loop:
	for !r.m.Halted() {
		if opts.MaxSteps > 0 && res.Ran >= opts.MaxSteps {
			res.Reason = StopMaxSteps
			break
		}
		if err := ctx.Err(); err != nil {
			res.Reason, runErr = StopCanceled, err
			break
		}

		halted, err := r.m.Step()
		if err != nil {
			res.Reason, runErr = StopError, err
			r.logger.Error("step failed", "step", r.m.Steps(), "state", r.m.State(), "error", err)
			break
		}
		res.Ran++
		r.logger.Debug("step", "step", r.m.Steps(), "state", r.m.State(), "heads", r.m.Heads())
		r.notify()

		if halted || opts.Delay <= 0 {
			continue
		}
		timer := time.NewTimer(opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Reason, runErr = StopCanceled, ctx.Err()
			break loop
		case <-timer.C:
		}
	}

	res.Steps = r.m.Steps()
	res.State = r.m.State()
	res.Outcome = r.m.Outcome()
	res.Halted = r.m.Halted()
	res.Elapsed = time.Since(start)

	r.logger.Info("run stopped",
		"reason", res.Reason,
		"state", res.State,
		"steps", res.Steps,
		"outcome", res.Outcome,
		"elapsed", res.Elapsed,
	)
	return res, runErr
}

func (r *Runner[S, Y]) notify() {
	if len(r.observers) == 0 {
		return
	}
	snap := Snapshot[S, Y]{
		Step:    r.m.Steps(),
		State:   r.m.State(),
		Halted:  r.m.Halted(),
		Outcome: r.m.Outcome(),
		Heads:   r.m.Heads(),
		Symbols: r.m.ReadSymbols(),
		Written: make([]int, r.m.NumTapes()),
	}
	for i := range snap.Written {
		snap.Written[i] = r.m.Written(i)
	}
	for _, o := range r.observers {
		o.OnStep(snap)
	}
}

func validateOptions(opts Options) error {
	if opts.MaxSteps < 0 {
		return fmt.Errorf("max steps must be non-negative, got %d", opts.MaxSteps)
	}
	if opts.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %s", opts.Delay)
	}
	return nil
}
