package machine

import (
	"fmt"
	"strings"
)

// Outcome describes why a machine stopped, if it did.
type Outcome int

const (
	Running Outcome = iota
	Accept
	Reject
	NoAction
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case NoAction:
		return "no_action"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Machine is a k-tape Turing machine. All configuration is private and only
// changes through Step, Reset and LoadInput.
type Machine[S, Y comparable] struct {
	transition TransitionFunc[S, Y]
	start      S
	accept     map[S]struct{}
	reject     map[S]struct{}

	bank   *TapeBank[Y]
	state  S
	steps  int
	halted bool
}

// New builds a machine with k tapes, all blank, every head at 0 and the state set
// to start. reject may be nil.
func New[S, Y comparable](k int, fn TransitionFunc[S, Y], start S, accept, reject []S, blank Y) (*Machine[S, Y], error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: num heads must be >= 1, got %d", ErrInvalidArgument, k)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: nil transition function", ErrInvalidArgument)
	}

	m := &Machine[S, Y]{
		transition: fn,
		start:      start,
		accept:     toSet(accept),
		reject:     toSet(reject),
		bank:       NewTapeBank(k, blank),
	}
	m.Reset()
	return m, nil
}

func toSet[S comparable](states []S) map[S]struct{} {
	set := make(map[S]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// Reset empties every tape, parks every head at 0 and restores the start state.
func (m *Machine[S, Y]) Reset() {
	m.bank.clear(m.bank.Len())
	m.state = m.start
	m.steps = 0
	m.halted = false
}

// LoadInput writes symbols on one tape starting at start and moves that tape's
// head to start. Other tapes and the state are left alone.
func (m *Machine[S, Y]) LoadInput(symbols []Y, tape, start int) error {
	if tape < 0 || tape >= m.bank.Len() {
		return fmt.Errorf("%w: tape index %d out of range [0,%d)", ErrInvalidArgument, tape, m.bank.Len())
	}
	m.bank.Seed(tape, symbols, start)
	return nil
}

// ReadSymbols returns the symbols under every head, in head order.
func (m *Machine[S, Y]) ReadSymbols() []Y {
	symbols := make([]Y, m.bank.Len())
	for i := range symbols {
		symbols[i] = m.bank.Read(i)
	}
	return symbols
}

// Step performs one transition and reports whether the machine is halted.
// A malformed action is rejected before any write or move, so a failed step
// leaves the configuration untouched.
func (m *Machine[S, Y]) Step() (bool, error) {
	if m.halted {
		return true, nil
	}

	action, ok := m.transition(m.state, m.ReadSymbols())
	if !ok {
		m.halted = true
		return true, nil
	}

	if err := action.validate(m.bank.Len()); err != nil {
		return false, &StepError{Step: m.steps, State: fmt.Sprint(m.state), Wrapped: err}
	}

	for i, w := range action.Writes {
		if w.Set {
			m.bank.Write(i, w.Symbol)
		}
	}
	for i, mv := range action.Moves {
		// moves were validated above
		_ = m.bank.Move(i, mv)
	}

	m.state = action.Next
	m.steps++
	if m.isAccept(m.state) || m.isReject(m.state) {
		m.halted = true
	}
	return m.halted, nil
}

func (m *Machine[S, Y]) isAccept(s S) bool {
	_, ok := m.accept[s]
	return ok
}

func (m *Machine[S, Y]) isReject(s S) bool {
	_, ok := m.reject[s]
	return ok
}

func (m *Machine[S, Y]) State() S      { return m.state }
func (m *Machine[S, Y]) StartState() S { return m.start }
func (m *Machine[S, Y]) Steps() int    { return m.steps }
func (m *Machine[S, Y]) Halted() bool  { return m.halted }
func (m *Machine[S, Y]) NumTapes() int { return m.bank.Len() }
func (m *Machine[S, Y]) Blank() Y      { return m.bank.blank }

func (m *Machine[S, Y]) Head(i int) int { return m.bank.Head(i) }

// Heads returns a copy of every head position.
func (m *Machine[S, Y]) Heads() []int {
	heads := make([]int, m.bank.Len())
	copy(heads, m.bank.heads)
	return heads
}

// Written reports how many cells of tape i were ever written.
func (m *Machine[S, Y]) Written(i int) int { return m.bank.Tape(i).Written() }

// Span returns the lowest and highest written positions of tape i.
func (m *Machine[S, Y]) Span(i int) (lo, hi int, ok bool) { return m.bank.Tape(i).Bounds() }

// Cell returns the symbol at an arbitrary position of tape i without moving its head.
func (m *Machine[S, Y]) Cell(i, pos int) Y { return m.bank.Tape(i).Get(pos) }

// Accepted is true once the machine halted in an accept state.
func (m *Machine[S, Y]) Accepted() bool { return m.halted && m.isAccept(m.state) }

// Rejected is true once the machine halted in a reject state that is not also an
// accept state.
func (m *Machine[S, Y]) Rejected() bool {
	return m.halted && !m.isAccept(m.state) && m.isReject(m.state)
}

// Outcome classifies the current configuration. Accept is checked before reject.
func (m *Machine[S, Y]) Outcome() Outcome {
	switch {
	case !m.halted:
		return Running
	case m.isAccept(m.state):
		return Accept
	case m.isReject(m.state):
		return Reject
	default:
		return NoAction
	}
}

// Cell is one position of a rendered tape window.
type Cell[Y comparable] struct {
	Pos    int
	Symbol Y
	Head   bool
}

// Window returns the cells of tape i within radius of its head.
func (m *Machine[S, Y]) Window(i, radius int) []Cell[Y] {
	if radius < 0 {
		radius = 0
	}
	h := m.bank.Head(i)
	cells := make([]Cell[Y], 0, 2*radius+1)
	for pos := h - radius; pos <= h+radius; pos++ {
		cells = append(cells, Cell[Y]{Pos: pos, Symbol: m.bank.Tape(i).Get(pos), Head: pos == h})
	}
	return cells
}

// Render formats the window of tape i, bracketing the cell under the head.
// A nil format falls back to fmt.Sprint.
func (m *Machine[S, Y]) Render(i, radius int, format func(Y) string) string {
	if format == nil {
		format = func(y Y) string { return fmt.Sprint(y) }
	}
	var sb strings.Builder
	for _, c := range m.Window(i, radius) {
		if c.Head {
			sb.WriteString("[" + format(c.Symbol) + "]")
		} else {
			sb.WriteString(" " + format(c.Symbol) + " ")
		}
	}
	return sb.String()
}
