package program

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/san-kum/tapesim/internal/machine"
	"gopkg.in/yaml.v3"
)

const (
	wildcard = "*"
	keep     = "-"
)

// TableFile is the YAML layout of a table program.
type TableFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Tapes       int         `yaml:"tapes"`
	Start       string      `yaml:"start"`
	Accept      []string    `yaml:"accept"`
	Reject      []string    `yaml:"reject"`
	Blank       string      `yaml:"blank"`
	Rules       []TableRule `yaml:"rules"`
}

// TableRule fires when the machine is in State and every read entry matches.
// Read entries are a symbol or "*". Write entries are a symbol, "-" to keep the
// cell, or "$n" for the symbol read from tape n. Moves are L, R or S.
type TableRule struct {
	State string   `yaml:"state"`
	Read  []string `yaml:"read"`
	Write []string `yaml:"write"`
	Move  []string `yaml:"move"`
	Next  string   `yaml:"next"`
}

type compiledRule struct {
	read   []rune
	wild   []bool
	writes []writeOp
	moves  []machine.Move
	next   string
}

type writeOp struct {
	set  bool
	sym  rune
	from int // tape index to copy from, -1 for a literal
}

// LoadTable reads a table program from a YAML file.
func LoadTable(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(data)
}

// ParseTable compiles a YAML table program. Rules are tried in file order and
// the first match wins; no match halts the machine.
func ParseTable(data []byte) (*Definition, error) {
	var tf TableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	return tf.Compile()
}

func (tf *TableFile) Compile() (*Definition, error) {
	if tf.Tapes < 1 {
		return nil, fmt.Errorf("table %q: tapes must be >= 1, got %d", tf.Name, tf.Tapes)
	}
	if tf.Start == "" {
		return nil, fmt.Errorf("table %q: missing start state", tf.Name)
	}
	blank := Blank
	if tf.Blank != "" {
		r, err := singleRune(tf.Blank)
		if err != nil {
			return nil, fmt.Errorf("table %q: blank: %w", tf.Name, err)
		}
		blank = r
	}

	byState := make(map[string][]compiledRule)
	for i, rule := range tf.Rules {
		cr, err := compileRule(rule, tf.Tapes)
		if err != nil {
			return nil, fmt.Errorf("table %q: rule %d: %w", tf.Name, i, err)
		}
		byState[rule.State] = append(byState[rule.State], cr)
	}

	k := tf.Tapes
	fn := func(state string, symbols []rune) (Action, bool) {
		for _, r := range byState[state] {
			if r.matches(symbols) {
				return r.apply(k, symbols), true
			}
		}
		return Action{}, false
	}

	name := tf.Name
	if name == "" {
		name = "table"
	}
	return &Definition{
		Name:        name,
		Description: tf.Description,
		Tapes:       k,
		Start:       tf.Start,
		Accept:      tf.Accept,
		Reject:      tf.Reject,
		Blank:       blank,
		Transition:  fn,
	}, nil
}

func compileRule(rule TableRule, k int) (compiledRule, error) {
	if rule.State == "" || rule.Next == "" {
		return compiledRule{}, fmt.Errorf("state and next are required")
	}
	if len(rule.Read) != k || len(rule.Write) != k || len(rule.Move) != k {
		return compiledRule{}, fmt.Errorf("%w: read/write/move need %d entries, got %d/%d/%d",
			machine.ErrArityMismatch, k, len(rule.Read), len(rule.Write), len(rule.Move))
	}

	cr := compiledRule{
		read:   make([]rune, k),
		wild:   make([]bool, k),
		writes: make([]writeOp, k),
		moves:  make([]machine.Move, k),
		next:   rule.Next,
	}
	for i := 0; i < k; i++ {
		if rule.Read[i] == wildcard {
			cr.wild[i] = true
		} else {
			r, err := singleRune(rule.Read[i])
			if err != nil {
				return compiledRule{}, fmt.Errorf("read[%d]: %w", i, err)
			}
			cr.read[i] = r
		}

		op, err := parseWrite(rule.Write[i], k)
		if err != nil {
			return compiledRule{}, fmt.Errorf("write[%d]: %w", i, err)
		}
		cr.writes[i] = op

		mv, err := machine.ParseMove(rule.Move[i])
		if err != nil {
			return compiledRule{}, fmt.Errorf("move[%d]: %w", i, err)
		}
		cr.moves[i] = mv
	}
	return cr, nil
}

func parseWrite(token string, k int) (writeOp, error) {
	switch {
	case token == keep:
		return writeOp{from: -1}, nil
	case strings.HasPrefix(token, "$") && len(token) > 1:
		n, err := strconv.Atoi(token[1:])
		if err != nil {
			return writeOp{}, fmt.Errorf("bad tape reference %q", token)
		}
		if n < 0 || n >= k {
			return writeOp{}, fmt.Errorf("tape reference %q out of range [0,%d)", token, k)
		}
		return writeOp{set: true, from: n}, nil
	}
	r, err := singleRune(token)
	if err != nil {
		return writeOp{}, err
	}
	return writeOp{set: true, sym: r, from: -1}, nil
}

func singleRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("symbol %q must be exactly one character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func (r compiledRule) matches(symbols []rune) bool {
	for i, sym := range symbols {
		if !r.wild[i] && r.read[i] != sym {
			return false
		}
	}
	return true
}

func (r compiledRule) apply(k int, symbols []rune) Action {
	a := action(k, r.next)
	for i, op := range r.writes {
		switch {
		case !op.set:
		case op.from >= 0:
			a.Writes[i] = machine.Put(symbols[op.from])
		default:
			a.Writes[i] = machine.Put(op.sym)
		}
	}
	copy(a.Moves, r.moves)
	return a
}
