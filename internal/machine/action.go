package machine

import "fmt"

// Move is a head displacement applied after the writes of a step.
type Move int8

const (
	Left  Move = -1
	Stay  Move = 0
	Right Move = 1
)

// ParseMove converts the L, R and S tokens.
func ParseMove(token string) (Move, error) {
	switch token {
	case "L":
		return Left, nil
	case "R":
		return Right, nil
	case "S":
		return Stay, nil
	}
	return Stay, fmt.Errorf("%w: %q", ErrInvalidMove, token)
}

func (m Move) Valid() bool {
	return m == Left || m == Stay || m == Right
}

func (m Move) String() string {
	switch m {
	case Left:
		return "L"
	case Right:
		return "R"
	case Stay:
		return "S"
	}
	return fmt.Sprintf("Move(%d)", int8(m))
}

// Write is an optional symbol for one tape. The zero value leaves the cell unchanged.
type Write[Y comparable] struct {
	Symbol Y
	Set    bool
}

// Put writes y.
func Put[Y comparable](y Y) Write[Y] {
	return Write[Y]{Symbol: y, Set: true}
}

// Keep leaves the cell under the head as it is.
func Keep[Y comparable]() Write[Y] {
	return Write[Y]{}
}

// Action is what a transition function prescribes for one step.
type Action[S, Y comparable] struct {
	Next   S
	Writes []Write[Y]
	Moves  []Move
}

// TransitionFunc maps the current state and the symbols under every head, in head
// order, to an action. Returning false means no action: the machine halts in place.
type TransitionFunc[S, Y comparable] func(state S, symbols []Y) (Action[S, Y], bool)

// validate checks arity and move tokens before anything is applied.
func (a Action[S, Y]) validate(k int) error {
	if len(a.Writes) != k || len(a.Moves) != k {
		return fmt.Errorf("%w: got %d writes and %d moves for %d tapes",
			ErrArityMismatch, len(a.Writes), len(a.Moves), k)
	}
	for i, mv := range a.Moves {
		if !mv.Valid() {
			return fmt.Errorf("%w: %v on tape %d", ErrInvalidMove, mv, i)
		}
	}
	return nil
}
