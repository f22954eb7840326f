// Package machine provides the multi-tape Turing machine engine.
//
// The package defines the tape storage model and the step protocol:
//
//   - [Tape]: sparse, unbounded tape keyed by signed position
//   - [TapeBank]: k tapes with one head each
//   - [TransitionFunc]: caller supplied automaton logic
//   - [Machine]: owns the configuration and executes one step per call
//
// # Example
//
//	m, _ := machine.New(2, fn, "q0", []string{"accept"}, nil, '_')
//	_ = m.LoadInput([]rune("ab"), 0, 0)
//	for {
//		halted, err := m.Step()
//		if err != nil || halted {
//			break
//		}
//	}
//
// # Thread Safety
//
// Machine instances are NOT thread-safe. Serialize calls to Step, LoadInput and
// Reset on a given instance, or give each goroutine its own machine.
package machine
