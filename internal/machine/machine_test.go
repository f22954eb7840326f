package machine_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tapesim/internal/machine"
)

const blank = '_'

func runeString(r rune) string { return string(r) }

// copyInput copies tape 0 onto tape 1 and accepts on the first blank.
func copyInput(k int) machine.TransitionFunc[string, rune] {
	return func(state string, symbols []rune) (machine.Action[string, rune], bool) {
		if state != "q0" {
			return machine.Action[string, rune]{}, false
		}
		writes := make([]machine.Write[rune], k)
		moves := make([]machine.Move, k)
		if symbols[0] == blank {
			return machine.Action[string, rune]{Next: "q_accept", Writes: writes, Moves: moves}, true
		}
		writes[1] = machine.Put(symbols[0])
		moves[0], moves[1] = machine.Right, machine.Right
		return machine.Action[string, rune]{Next: "q0", Writes: writes, Moves: moves}, true
	}
}

func fixed(a machine.Action[string, rune]) machine.TransitionFunc[string, rune] {
	return func(string, []rune) (machine.Action[string, rune], bool) { return a, true }
}

var _ = Describe("Machine", func() {
	Context("construction", func() {
		It("should accept any positive head count", func() {
			for k := 1; k <= 8; k++ {
				m, err := machine.New(k, copyInput(k), "q0", []string{"q_accept"}, nil, blank)
				Expect(err).NotTo(HaveOccurred())
				Expect(m.NumTapes()).To(Equal(k))
				Expect(m.ReadSymbols()).To(HaveLen(k))
			}
		})

		It("should reject zero or negative head counts", func() {
			for _, k := range []int{0, -1, -42} {
				_, err := machine.New(k, copyInput(2), "q0", nil, nil, blank)
				Expect(err).To(MatchError(machine.ErrInvalidArgument))
			}
		})

		It("should reject a nil transition function", func() {
			_, err := machine.New[string, rune](1, nil, "q0", nil, nil, blank)
			Expect(err).To(MatchError(machine.ErrInvalidArgument))
		})

		It("should start in the start state, not halted", func() {
			m, _ := machine.New(2, copyInput(2), "q0", []string{"q_accept"}, nil, blank)
			Expect(m.State()).To(Equal("q0"))
			Expect(m.Steps()).To(BeZero())
			Expect(m.Halted()).To(BeFalse())
			Expect(m.Outcome()).To(Equal(machine.Running))
		})
	})

	Context("tapes", func() {
		It("should read blank at never written positions", func() {
			m, _ := machine.New(3, copyInput(3), "q0", nil, nil, blank)
			for _, pos := range []int{0, 1, -1, 1 << 40, -(1 << 40)} {
				for i := 0; i < 3; i++ {
					Expect(m.Cell(i, pos)).To(Equal(rune(blank)))
				}
			}
			Expect(m.ReadSymbols()).To(Equal([]rune{blank, blank, blank}))
			Expect(m.Written(0)).To(BeZero())
		})

		It("should seed input and park the head at the start offset", func() {
			m, _ := machine.New(2, copyInput(2), "q0", nil, nil, blank)
			for _, start := range []int{0, 7, -5} {
				Expect(m.LoadInput([]rune("xyz"), 1, start)).To(Succeed())
				Expect(m.Head(1)).To(Equal(start))
				Expect(m.ReadSymbols()[1]).To(Equal('x'))
				Expect(m.Cell(1, start+2)).To(Equal('z'))
			}
			lo, hi, ok := m.Span(1)
			Expect(ok).To(BeTrue())
			Expect(lo).To(Equal(-5))
			Expect(hi).To(Equal(9))
			Expect(m.Head(0)).To(BeZero())
			Expect(m.State()).To(Equal("q0"))
		})

		It("should reject an out of range tape index on load", func() {
			m, _ := machine.New(2, copyInput(2), "q0", nil, nil, blank)
			Expect(m.LoadInput([]rune("a"), 2, 0)).To(MatchError(machine.ErrInvalidArgument))
			Expect(m.LoadInput([]rune("a"), -1, 0)).To(MatchError(machine.ErrInvalidArgument))
		})

		It("should move heads by one cell from any position", func() {
			for _, p := range []int{0, 3, -3, -1000} {
				bank := machine.NewTapeBank[rune](1, blank)
				bank.Seed(0, nil, p)

				Expect(bank.Move(0, machine.Right)).To(Succeed())
				Expect(bank.Head(0)).To(Equal(p + 1))

				bank.Seed(0, nil, p)
				Expect(bank.Move(0, machine.Left)).To(Succeed())
				Expect(bank.Head(0)).To(Equal(p - 1))

				bank.Seed(0, nil, p)
				Expect(bank.Move(0, machine.Stay)).To(Succeed())
				Expect(bank.Head(0)).To(Equal(p))
			}
		})

		It("should leave the head in place on an invalid move", func() {
			bank := machine.NewTapeBank[rune](1, blank)
			Expect(bank.Move(0, machine.Move(2))).To(MatchError(machine.ErrInvalidMove))
			Expect(bank.Head(0)).To(BeZero())
		})

		It("should keep prior symbols on skip and overwrite on explicit blank", func() {
			bank := machine.NewTapeBank[rune](2, blank)
			bank.Seed(0, []rune("a"), 0)
			bank.Seed(1, []rune("b"), 0)
			bank.Write(1, blank)

			Expect(bank.Read(0)).To(Equal('a'))
			Expect(bank.Read(1)).To(Equal(rune(blank)))
			Expect(bank.Tape(1).Written()).To(Equal(1))
		})

		It("should report written bounds", func() {
			tape := machine.NewTape[rune](blank)
			_, _, ok := tape.Bounds()
			Expect(ok).To(BeFalse())

			tape.Set(-4, 'a')
			tape.Set(9, 'b')
			lo, hi, ok := tape.Bounds()
			Expect(ok).To(BeTrue())
			Expect(lo).To(Equal(-4))
			Expect(hi).To(Equal(9))
			Expect(tape.Slice(8, 10)).To(Equal([]rune{blank, 'b', blank}))
		})
	})

	Context("stepping", func() {
		It("should copy the input and accept after three steps", func() {
			m, err := machine.New(6, copyInput(6), "q0", []string{"q_accept"}, nil, blank)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.LoadInput([]rune("ab"), 0, 0)).To(Succeed())

			for i := 0; i < 2; i++ {
				halted, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(halted).To(BeFalse())
			}
			Expect(m.Steps()).To(Equal(2))
			Expect(m.Cell(1, 0)).To(Equal('a'))
			Expect(m.Cell(1, 1)).To(Equal('b'))

			halted, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(halted).To(BeTrue())
			Expect(m.State()).To(Equal("q_accept"))
			Expect(m.Halted()).To(BeTrue())
			Expect(m.Steps()).To(Equal(3))
			Expect(m.Accepted()).To(BeTrue())
			Expect(m.Outcome()).To(Equal(machine.Accept))
		})

		It("should be a no-op once halted", func() {
			calls := 0
			fn := func(state string, symbols []rune) (machine.Action[string, rune], bool) {
				calls++
				return copyInput(2)(state, symbols)
			}
			m, _ := machine.New(2, fn, "q0", []string{"q_accept"}, nil, blank)
			_ = m.LoadInput([]rune("a"), 0, 0)
			for !m.Halted() {
				_, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			before := calls

			for i := 0; i < 5; i++ {
				halted, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(halted).To(BeTrue())
			}
			Expect(calls).To(Equal(before))
			Expect(m.Steps()).To(Equal(2))
			Expect(m.State()).To(Equal("q_accept"))
			Expect(m.Cell(1, 0)).To(Equal('a'))
		})

		It("should halt in place when no action is returned", func() {
			none := func(string, []rune) (machine.Action[string, rune], bool) {
				return machine.Action[string, rune]{}, false
			}
			m, _ := machine.New(1, none, "q0", []string{"acc"}, []string{"rej"}, blank)

			halted, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(halted).To(BeTrue())
			Expect(m.State()).To(Equal("q0"))
			Expect(m.Steps()).To(BeZero())
			Expect(m.Outcome()).To(Equal(machine.NoAction))
			Expect(m.Accepted()).To(BeFalse())
			Expect(m.Rejected()).To(BeFalse())
		})

		It("should halt on a reject state", func() {
			fn := fixed(machine.Action[string, rune]{
				Next:   "rej",
				Writes: []machine.Write[rune]{machine.Keep[rune]()},
				Moves:  []machine.Move{machine.Stay},
			})
			m, _ := machine.New(1, fn, "q0", []string{"acc"}, []string{"rej"}, blank)

			halted, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(halted).To(BeTrue())
			Expect(m.Rejected()).To(BeTrue())
			Expect(m.Outcome()).To(Equal(machine.Reject))
		})

		It("should prefer accept when a state is in both sets", func() {
			fn := fixed(machine.Action[string, rune]{
				Next:   "both",
				Writes: []machine.Write[rune]{{}},
				Moves:  []machine.Move{machine.Stay},
			})
			m, _ := machine.New(1, fn, "q0", []string{"both"}, []string{"both"}, blank)
			_, _ = m.Step()
			Expect(m.Outcome()).To(Equal(machine.Accept))
			Expect(m.Accepted()).To(BeTrue())
			Expect(m.Rejected()).To(BeFalse())
		})

		It("should apply writes before moves", func() {
			fn := fixed(machine.Action[string, rune]{
				Next:   "q0",
				Writes: []machine.Write[rune]{machine.Put('x')},
				Moves:  []machine.Move{machine.Right},
			})
			m, _ := machine.New(1, fn, "q0", nil, nil, blank)
			_ = m.LoadInput([]rune("ab"), 0, 0)

			_, err := m.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Cell(0, 0)).To(Equal('x'))
			Expect(m.Cell(0, 1)).To(Equal('b'))
			Expect(m.Head(0)).To(Equal(1))
		})

		It("should fail on arity mismatch without touching the configuration", func() {
			fn := fixed(machine.Action[string, rune]{
				Next:   "q1",
				Writes: []machine.Write[rune]{machine.Put('z')},
				Moves:  []machine.Move{machine.Right, machine.Right},
			})
			m, _ := machine.New(2, fn, "q0", []string{"q1"}, nil, blank)
			_ = m.LoadInput([]rune("a"), 0, 0)

			halted, err := m.Step()
			Expect(err).To(MatchError(machine.ErrArityMismatch))
			Expect(halted).To(BeFalse())

			var stepErr *machine.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(BeZero())
			Expect(stepErr.State).To(Equal("q0"))

			Expect(m.Steps()).To(BeZero())
			Expect(m.State()).To(Equal("q0"))
			Expect(m.Halted()).To(BeFalse())
			Expect(m.Heads()).To(Equal([]int{0, 0}))
			Expect(m.Cell(0, 0)).To(Equal('a'))
		})

		It("should reject an invalid move before moving any head", func() {
			fn := fixed(machine.Action[string, rune]{
				Next:   "q0",
				Writes: []machine.Write[rune]{machine.Put('w'), machine.Put('w')},
				Moves:  []machine.Move{machine.Right, machine.Move(5)},
			})
			m, _ := machine.New(2, fn, "q0", nil, nil, blank)

			_, err := m.Step()
			Expect(err).To(MatchError(machine.ErrInvalidMove))
			Expect(m.Heads()).To(Equal([]int{0, 0}))
			Expect(m.ReadSymbols()).To(Equal([]rune{blank, blank}))
			Expect(m.Steps()).To(BeZero())
		})

		It("should work with non-string states and symbols", func() {
			fn := func(state int, symbols []byte) (machine.Action[int, byte], bool) {
				if state == 3 {
					return machine.Action[int, byte]{}, false
				}
				return machine.Action[int, byte]{
					Next:   state + 1,
					Writes: []machine.Write[byte]{machine.Put(byte('0' + state))},
					Moves:  []machine.Move{machine.Left},
				}, true
			}
			m, _ := machine.New(1, fn, 0, []int{3}, nil, byte(0))
			for !m.Halted() {
				_, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(m.State()).To(Equal(3))
			Expect(m.Head(0)).To(Equal(-3))
			Expect(m.Cell(0, -2)).To(Equal(byte('2')))
		})
	})

	Context("reset", func() {
		It("should restore the initial configuration after a run", func() {
			m, _ := machine.New(6, copyInput(6), "q0", []string{"q_accept"}, nil, blank)
			_ = m.LoadInput([]rune("hello"), 0, 0)
			for !m.Halted() {
				_, err := m.Step()
				Expect(err).NotTo(HaveOccurred())
			}

			m.Reset()
			Expect(m.State()).To(Equal("q0"))
			Expect(m.Steps()).To(BeZero())
			Expect(m.Halted()).To(BeFalse())
			Expect(m.ReadSymbols()).To(Equal([]rune{blank, blank, blank, blank, blank, blank}))
			Expect(m.Heads()).To(Equal(make([]int, 6)))
			for i := 0; i < 6; i++ {
				Expect(m.Written(i)).To(BeZero())
			}
		})
	})

	Context("rendering", func() {
		It("should bracket the head cell", func() {
			m, _ := machine.New(1, copyInput(1), "q0", nil, nil, blank)
			_ = m.LoadInput([]rune("ab"), 0, 0)
			Expect(m.Render(0, 1, runeString)).To(Equal(" _ [a] b "))
			Expect(m.Window(0, 2)).To(HaveLen(5))
			Expect(m.Window(0, 0)[0].Head).To(BeTrue())
		})

		It("should fall back to fmt formatting", func() {
			m, _ := machine.New(1, copyInput(1), "q0", nil, nil, blank)
			Expect(m.Render(0, 0, nil)).To(Equal("[95]"))
		})
	})

	Context("moves", func() {
		It("should parse move tokens", func() {
			for token, want := range map[string]machine.Move{"L": machine.Left, "R": machine.Right, "S": machine.Stay} {
				mv, err := machine.ParseMove(token)
				Expect(err).NotTo(HaveOccurred())
				Expect(mv).To(Equal(want))
				Expect(mv.String()).To(Equal(token))
			}
			_, err := machine.ParseMove("X")
			Expect(err).To(MatchError(machine.ErrInvalidMove))
		})
	})
})
