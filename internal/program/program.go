// Package program holds transition functions that drive the machine engine:
// a few built-in automata and table programs loaded from YAML.
package program

import (
	"fmt"

	"github.com/san-kum/tapesim/internal/machine"
)

// Blank is the default blank symbol.
const Blank = '_'

type (
	Action     = machine.Action[string, rune]
	Transition = machine.TransitionFunc[string, rune]
	Machine    = machine.Machine[string, rune]
)

// Definition is everything needed to build a machine for one program.
type Definition struct {
	Name        string
	Description string
	Tapes       int
	Start       string
	Accept      []string
	Reject      []string
	Blank       rune
	Transition  Transition
}

// Build constructs a fresh machine for the definition.
func (d *Definition) Build() (*Machine, error) {
	m, err := machine.New(d.Tapes, d.Transition, d.Start, d.Accept, d.Reject, d.Blank)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", d.Name, err)
	}
	return m, nil
}

// action is a small helper for hand written transition functions: every tape is
// kept and stays unless overridden.
func action(k int, next string) Action {
	return Action{
		Next:   next,
		Writes: make([]machine.Write[rune], k),
		Moves:  make([]machine.Move, k),
	}
}
