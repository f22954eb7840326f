package program

import (
	"fmt"

	"github.com/san-kum/tapesim/internal/machine"
)

// DefaultCopyTapes matches the six tape demonstration machine.
const DefaultCopyTapes = 6

// Copy copies tape 0 onto tape 1, moving both heads right, and accepts at the
// first blank. Tapes 2..k-1 are idle.
func Copy(k int) (*Definition, error) {
	if k < 2 {
		return nil, fmt.Errorf("copy needs at least 2 tapes, got %d", k)
	}
	fn := func(state string, symbols []rune) (Action, bool) {
		if state != "q0" {
			return Action{}, false
		}
		if symbols[0] == Blank {
			return action(k, "q_accept"), true
		}
		a := action(k, "q0")
		a.Writes[1] = machine.Put(symbols[0])
		a.Moves[0], a.Moves[1] = machine.Right, machine.Right
		return a, true
	}
	return &Definition{
		Name:        "copy",
		Description: "copy tape 0 onto tape 1",
		Tapes:       k,
		Start:       "q0",
		Accept:      []string{"q_accept"},
		Blank:       Blank,
		Transition:  fn,
	}, nil
}

// Increment adds one to a binary number whose most significant digit is under
// the head.
func Increment(k int) (*Definition, error) {
	if k != 1 {
		return nil, fmt.Errorf("increment uses exactly 1 tape, got %d", k)
	}
	fn := func(state string, symbols []rune) (Action, bool) {
		s := symbols[0]
		switch state {
		case "right":
			if s == Blank {
				a := action(1, "carry")
				a.Moves[0] = machine.Left
				return a, true
			}
			a := action(1, "right")
			a.Moves[0] = machine.Right
			return a, true
		case "carry":
			switch s {
			case '1':
				a := action(1, "carry")
				a.Writes[0] = machine.Put('0')
				a.Moves[0] = machine.Left
				return a, true
			case '0', Blank:
				a := action(1, "done")
				a.Writes[0] = machine.Put('1')
				return a, true
			}
			return action(1, "invalid"), true
		}
		return Action{}, false
	}
	return &Definition{
		Name:        "increment",
		Description: "binary increment",
		Tapes:       1,
		Start:       "right",
		Accept:      []string{"done"},
		Reject:      []string{"invalid"},
		Blank:       Blank,
		Transition:  fn,
	}, nil
}

// Palindrome copies the input to tape 1, rewinds tape 0 and compares both tapes
// in opposite directions.
func Palindrome(k int) (*Definition, error) {
	if k != 2 {
		return nil, fmt.Errorf("palindrome uses exactly 2 tapes, got %d", k)
	}
	fn := func(state string, symbols []rune) (Action, bool) {
		s0, s1 := symbols[0], symbols[1]
		switch state {
		case "copy":
			if s0 == Blank {
				a := action(2, "rewind")
				a.Moves[0], a.Moves[1] = machine.Left, machine.Left
				return a, true
			}
			a := action(2, "copy")
			a.Writes[1] = machine.Put(s0)
			a.Moves[0], a.Moves[1] = machine.Right, machine.Right
			return a, true
		case "rewind":
			if s0 == Blank {
				a := action(2, "compare")
				a.Moves[0] = machine.Right
				return a, true
			}
			a := action(2, "rewind")
			a.Moves[0] = machine.Left
			return a, true
		case "compare":
			if s0 == Blank {
				return action(2, "yes"), true
			}
			if s0 != s1 {
				return action(2, "no"), true
			}
			a := action(2, "compare")
			a.Moves[0], a.Moves[1] = machine.Right, machine.Left
			return a, true
		}
		return Action{}, false
	}
	return &Definition{
		Name:        "palindrome",
		Description: "accept palindromes over any alphabet",
		Tapes:       2,
		Start:       "copy",
		Accept:      []string{"yes"},
		Reject:      []string{"no"},
		Blank:       Blank,
		Transition:  fn,
	}, nil
}
