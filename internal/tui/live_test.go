package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/san-kum/tapesim/internal/program"
	"github.com/san-kum/tapesim/internal/runner"
)

func runeString(r rune) string { return string(r) }

func TestLiveRenderer(t *testing.T) {
	def, err := program.Copy(2)
	if err != nil {
		t.Fatal(err)
	}
	m, err := def.Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.LoadInput([]rune("ab"), 0, 0); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	lr := NewLiveRenderer(&buf, m, 1, runeString)
	lr.Clear = false

	r := runner.New(m, nil)
	r.AddObserver(lr)
	res, err := r.Run(context.Background(), runner.Options{})
	if err != nil {
		t.Fatal(err)
	}
	lr.End(res)

	out := buf.String()
	for _, want := range []string{
		"Step: 0 State: q0\nTape 0 :  _ [a] b \nTape 1 :  _ [_] _ \n",
		"Step: 2 State: q0\nTape 0 :  b [_] _ \nTape 1 :  b [_] _ \n",
		"Step: 3 State: q_accept",
		"Machine halted. State: q_accept (accept)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, clearScreen) {
		t.Error("clear codes written with Clear disabled")
	}
}

func TestLiveRenderer_ClearAndEnd(t *testing.T) {
	def, _ := program.Increment(1)
	m, _ := def.Build()

	var buf bytes.Buffer
	lr := NewLiveRenderer(&buf, m, 0, runeString)
	lr.Begin()
	lr.OnStep(runner.Snapshot[string, rune]{State: "right"})
	lr.End(&runner.Result[string]{Reason: runner.StopCanceled, Steps: 7})

	out := buf.String()
	if !strings.HasPrefix(out, hideCursor+clearScreen) {
		t.Errorf("expected cursor and clear codes, got %q", out)
	}
	if !strings.Contains(out, "Stopped manually at step 7") {
		t.Errorf("missing stop message: %q", out)
	}
	if !strings.Contains(out, showCursor) {
		t.Error("cursor not restored")
	}
}
