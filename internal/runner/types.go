package runner

import (
	"time"

	"github.com/san-kum/tapesim/internal/machine"
)

// Snapshot is the observable configuration after a step, or before the first one.
type Snapshot[S, Y comparable] struct {
	Step    int
	State   S
	Halted  bool
	Outcome machine.Outcome
	Heads   []int
	Symbols []Y
	Written []int
}

type Observer[S, Y comparable] interface {
	OnStep(s Snapshot[S, Y])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[S, Y comparable] func(s Snapshot[S, Y])

func (f ObserverFunc[S, Y]) OnStep(s Snapshot[S, Y]) { f(s) }

type StopReason string

const (
	StopHalted   StopReason = "halted"
	StopMaxSteps StopReason = "max_steps"
	StopCanceled StopReason = "canceled"
	StopError    StopReason = "error"
)

// Options bound a single Run call. Zero MaxSteps means no bound.
type Options struct {
	MaxSteps int
	Delay    time.Duration
}

type Result[S comparable] struct {
	Steps   int
	Ran     int
	State   S
	Outcome machine.Outcome
	Halted  bool
	Reason  StopReason
	Elapsed time.Duration
}
