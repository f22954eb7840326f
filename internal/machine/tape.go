package machine

import "fmt"

// Tape is an unbounded tape that only stores cells that were written.
// Positions absent from the map hold the blank symbol.
type Tape[Y comparable] struct {
	cells map[int]Y
	blank Y
}

func NewTape[Y comparable](blank Y) *Tape[Y] {
	return &Tape[Y]{cells: make(map[int]Y), blank: blank}
}

func (t *Tape[Y]) Get(pos int) Y {
	if sym, ok := t.cells[pos]; ok {
		return sym
	}
	return t.blank
}

func (t *Tape[Y]) Set(pos int, sym Y) {
	t.cells[pos] = sym
}

// Written reports how many cells hold an explicit value, blank writes included.
func (t *Tape[Y]) Written() int {
	return len(t.cells)
}

// Bounds returns the lowest and highest written positions.
func (t *Tape[Y]) Bounds() (lo, hi int, ok bool) {
	for pos := range t.cells {
		if !ok {
			lo, hi, ok = pos, pos, true
			continue
		}
		lo = min(lo, pos)
		hi = max(hi, pos)
	}
	return lo, hi, ok
}

// Slice returns the symbols in [from, to], blanks included.
func (t *Tape[Y]) Slice(from, to int) []Y {
	if to < from {
		return nil
	}
	out := make([]Y, 0, to-from+1)
	for pos := from; pos <= to; pos++ {
		out = append(out, t.Get(pos))
	}
	return out
}

// TapeBank holds k tapes with exactly one head per tape.
type TapeBank[Y comparable] struct {
	tapes []*Tape[Y]
	heads []int
	blank Y
}

func NewTapeBank[Y comparable](k int, blank Y) *TapeBank[Y] {
	b := &TapeBank[Y]{blank: blank}
	b.clear(k)
	return b
}

func (b *TapeBank[Y]) clear(k int) {
	b.tapes = make([]*Tape[Y], k)
	for i := range b.tapes {
		b.tapes[i] = NewTape(b.blank)
	}
	b.heads = make([]int, k)
}

func (b *TapeBank[Y]) Len() int { return len(b.tapes) }

func (b *TapeBank[Y]) Head(i int) int { return b.heads[i] }

func (b *TapeBank[Y]) Tape(i int) *Tape[Y] { return b.tapes[i] }

// Read returns the symbol under head i.
func (b *TapeBank[Y]) Read(i int) Y {
	return b.tapes[i].Get(b.heads[i])
}

// Write stores sym under head i.
func (b *TapeBank[Y]) Write(i int, sym Y) {
	b.tapes[i].Set(b.heads[i], sym)
}

// Move shifts head i. An invalid move leaves the head where it was.
func (b *TapeBank[Y]) Move(i int, m Move) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v on tape %d", ErrInvalidMove, m, i)
	}
	b.heads[i] += int(m)
	return nil
}

// Seed writes symbols on tape i from start onward and parks the head at start.
func (b *TapeBank[Y]) Seed(i int, symbols []Y, start int) {
	for off, sym := range symbols {
		b.tapes[i].Set(start+off, sym)
	}
	b.heads[i] = start
}
