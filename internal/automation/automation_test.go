package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/tapesim/internal/machine"
	"github.com/san-kum/tapesim/internal/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `name: smoke
description: built-in programs
runs:
  - name: copy
    program: copy
    tapes: 2
    input: ab
    expect: accept
  - name: odd palindrome
    program: palindrome
    input: racecar
    expect: accept
  - program: palindrome
    input: ab
    expect: accept
  - name: walks off
    program: copy
    input: abcdef
    max_steps: 2
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Runs, 4)
	assert.Equal(t, 2, sc.Runs[0].Tapes)
	assert.Equal(t, 2, sc.Runs[3].MaxSteps)
}

func TestLoadScenario_Empty(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: empty\n"))
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	reports, err := RunScenario(context.Background(), sc, program.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.True(t, reports[0].Passed)
	assert.Equal(t, machine.Accept, reports[0].Result.Outcome)
	assert.Equal(t, 3, reports[0].Result.Steps)

	assert.True(t, reports[1].Passed)

	assert.Equal(t, "run 3", reports[2].Name)
	assert.False(t, reports[2].Passed)
	assert.Equal(t, machine.Reject, reports[2].Result.Outcome)

	assert.True(t, reports[3].Passed, "no expectation always passes")
	assert.Equal(t, machine.Running, reports[3].Result.Outcome)

	passed, failed := Summary(reports)
	assert.Equal(t, 3, passed)
	assert.Equal(t, 1, failed)
}

func TestRunScenario_BadRunContinues(t *testing.T) {
	sc := &Scenario{Runs: []Run{
		{Program: "nope"},
		{Program: "increment", Input: "1", Expect: "accept"},
	}}

	reports, err := RunScenario(context.Background(), sc, program.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Error(t, reports[0].Err)
	assert.False(t, reports[0].Passed)
	assert.True(t, reports[1].Passed)
}

func TestRunScenario_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &Scenario{Runs: []Run{
		{Program: "copy", Input: "abc"},
		{Program: "copy", Input: "abc"},
	}}
	reports, err := RunScenario(ctx, sc, program.NewRegistry(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, reports, 1)
}

func TestRunFuzz_Deterministic(t *testing.T) {
	cfg := &FuzzConfig{
		Program:  "palindrome",
		Alphabet: "ab",
		MinLen:   0,
		MaxLen:   6,
		Trials:   40,
		MaxSteps: 100,
		Workers:  3,
		Seed:     7,
	}

	first, err := RunFuzz(context.Background(), cfg, program.NewRegistry(), nil)
	require.NoError(t, err)
	second, err := RunFuzz(context.Background(), cfg, program.NewRegistry(), nil)
	require.NoError(t, err)

	require.Len(t, first, 40)
	for i := range first {
		assert.Equal(t, i, first[i].ID)
		assert.Equal(t, first[i].Input, second[i].Input)
		assert.Equal(t, first[i].Outcome, second[i].Outcome)

		want := machine.Reject
		if isPalindrome(first[i].Input) {
			want = machine.Accept
		}
		assert.Equal(t, want, first[i].Outcome, "input %q", first[i].Input)
	}
}

func TestRunFuzz_StepLimit(t *testing.T) {
	cfg := &FuzzConfig{
		Program:  "copy",
		Alphabet: "xyz",
		MinLen:   5,
		MaxLen:   5,
		Trials:   4,
		MaxSteps: 2,
		Seed:     1,
	}

	trials, err := RunFuzz(context.Background(), cfg, program.NewRegistry(), nil)
	require.NoError(t, err)

	outcomes, errs := Tally(trials)
	assert.Zero(t, errs)
	assert.Equal(t, 4, outcomes[machine.Running])
	for _, tr := range trials {
		assert.Len(t, tr.Input, 5)
		assert.Equal(t, 2, tr.Steps)
	}
}

func TestRunFuzz_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  FuzzConfig
	}{
		{"empty alphabet", FuzzConfig{Program: "copy", MaxLen: 1, Trials: 1, MaxSteps: 1}},
		{"bad range", FuzzConfig{Program: "copy", Alphabet: "a", MinLen: 3, MaxLen: 1, Trials: 1, MaxSteps: 1}},
		{"no trials", FuzzConfig{Program: "copy", Alphabet: "a", MaxLen: 1, MaxSteps: 1}},
		{"no step limit", FuzzConfig{Program: "copy", Alphabet: "a", MaxLen: 1, Trials: 1}},
		{"unknown program", FuzzConfig{Program: "nope", Alphabet: "a", MaxLen: 1, Trials: 1, MaxSteps: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunFuzz(context.Background(), &tt.cfg, program.NewRegistry(), nil)
			assert.Error(t, err)
		})
	}
}

func isPalindrome(s string) bool {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}
