package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tapesim/internal/machine"
	"github.com/san-kum/tapesim/internal/program"
)

const (
	historyCapacity = 200
	minDelay        = 10 * time.Millisecond
	maxDelay        = 2 * time.Second
)

type TickMsg time.Time

// Options describe the input the model reloads on reset.
type Options struct {
	Input     []rune
	InputTape int
	StartPos  int
	Delay     time.Duration
	Window    int
	Theme     string
}

// Model steps a machine on a timer and draws it.
type Model struct {
	name     string
	m        *program.Machine
	opts     Options
	delay    time.Duration
	running  bool
	err      error
	history  []float64
	theme    Theme
	styles   styles
	showHelp bool
	width    int
}

// NewModel loads the input into m and returns a running model.
func NewModel(name string, m *program.Machine, opts Options) (Model, error) {
	if opts.Delay <= 0 {
		opts.Delay = 250 * time.Millisecond
	}
	theme := GetTheme(opts.Theme)
	model := Model{
		name:    name,
		m:       m,
		opts:    opts,
		delay:   opts.Delay,
		running: true,
		theme:   theme,
		styles:  newStyles(theme),
		width:   80,
	}
	if err := model.reset(); err != nil {
		return Model{}, err
	}
	return model, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.delay, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.delay = max(m.delay/2, minDelay)
		case "-", "_":
			m.delay = min(m.delay*2, maxDelay)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.err != nil || m.m.Halted() {
		return
	}
	if _, err := m.m.Step(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record()
}

func (m *Model) record() {
	m.history = append(m.history, float64(m.m.Head(0)))
	if len(m.history) > historyCapacity {
		m.history = m.history[len(m.history)-historyCapacity:]
	}
}

func (m *Model) reset() error {
	m.m.Reset()
	m.err = nil
	m.history = m.history[:0]
	if err := m.m.LoadInput(m.opts.Input, m.opts.InputTape, m.opts.StartPos); err != nil {
		return err
	}
	m.record()
	return nil
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.reject.Render("ERROR")
	case m.m.Halted():
		label := "HALTED (" + m.m.Outcome().String() + ")"
		if m.m.Outcome() == machine.Reject {
			return m.styles.reject.Render(label)
		}
		return m.styles.accept.Render(label)
	case m.running:
		return m.styles.running.Render("RUNNING")
	default:
		return m.styles.paused.Render("PAUSED")
	}
}

func (m Model) renderTape(i int) string {
	var sb strings.Builder
	for _, c := range m.m.Window(i, m.opts.Window) {
		sym := string(c.Symbol)
		if c.Head {
			sb.WriteString(m.styles.head.Render("[" + sym + "]"))
		} else {
			sb.WriteString(m.styles.cell.Render(" " + sym + " "))
		}
	}
	return sb.String()
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	s.WriteString(m.styles.label.Render("Step") + m.styles.value.Render(fmt.Sprintf("%d", m.m.Steps())) + "\n")
	s.WriteString(m.styles.label.Render("State") + m.styles.value.Render(m.m.State()) + "\n")
	s.WriteString(m.styles.label.Render("Delay") + m.styles.value.Render(m.delay.String()) + "\n")
	s.WriteString(m.styles.label.Render("Theme") + m.styles.value.Render(m.theme.Name) + "\n\n")

	for i := 0; i < m.m.NumTapes(); i++ {
		s.WriteString(m.styles.label.Render(fmt.Sprintf("Tape %d", i)) + m.renderTape(i) + "\n")
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(min(60, max(20, m.width-20))),
			asciigraph.Caption("head 0 position"),
		)
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	if m.err != nil {
		s.WriteString(m.styles.errText.Render(m.err.Error()) + "\n")
	}

	s.WriteString(m.styles.help.Render("SP:Pause N:Step R:Reset +/-:Speed T:Theme ?:Help Q:Quit"))
	view := m.styles.panel.Render(s.String())

	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, helpText, view)
	}
	return view
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step (paused)     ║
║  R        - Reset and reload input   ║
║  +/-      - Faster/slower            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

// Run starts the interactive program and blocks until it exits.
func Run(name string, m *program.Machine, opts Options) error {
	model, err := NewModel(name, m, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model).Run()
	return err
}
