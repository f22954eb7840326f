package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/tapesim/internal/logging"
	"github.com/san-kum/tapesim/internal/program"
	"github.com/san-kum/tapesim/internal/runner"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted list of runs, each optionally checked against an
// expected outcome.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Run  `yaml:"runs"`
}

// Run is a single entry in a scenario.
type Run struct {
	Name        string `yaml:"name"`
	Program     string `yaml:"program"`
	ProgramFile string `yaml:"program_file"`
	Tapes       int    `yaml:"tapes"`
	Input       string `yaml:"input"`
	InputTape   int    `yaml:"input_tape"`
	StartPos    int    `yaml:"start_pos"`
	MaxSteps    int    `yaml:"max_steps"`
	// Expect is accept, reject, no_action or empty for no check.
	Expect string `yaml:"expect"`
}

// Report is what happened to one run.
type Report struct {
	Name    string
	Program string
	Input   string
	Result  *runner.Result[string]
	Passed  bool
	Err     error
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("%s: scenario has no runs", path)
	}

	return &scenario, nil
}

// RunScenario executes every run in order. A run that fails to build or step is
// reported and the scenario continues; only cancellation stops it early.
func RunScenario(ctx context.Context, scenario *Scenario, registry *program.Registry, logger *slog.Logger) ([]Report, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	reports := make([]Report, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run %d", i+1)
		}
		logger.Info("scenario run", "scenario", scenario.Name, "run", name, "index", i+1, "total", len(scenario.Runs))

		rep := Report{Name: name, Program: run.Program, Input: run.Input}
		rep.Result, rep.Err = execute(ctx, registry, logger, run)
		if rep.Err != nil && ctx.Err() != nil {
			reports = append(reports, rep)
			return reports, ctx.Err()
		}
		if rep.Err == nil {
			rep.Passed = run.Expect == "" || run.Expect == rep.Result.Outcome.String()
		}
		if !rep.Passed {
			logger.Warn("scenario run failed", "run", name, "expect", run.Expect, "error", rep.Err)
		}
		reports = append(reports, rep)
	}

	return reports, nil
}

func execute(ctx context.Context, registry *program.Registry, logger *slog.Logger, run Run) (*runner.Result[string], error) {
	def, err := registry.Resolve(run.Program, run.ProgramFile, run.Tapes)
	if err != nil {
		return nil, err
	}
	m, err := def.Build()
	if err != nil {
		return nil, err
	}
	if err := m.LoadInput([]rune(run.Input), run.InputTape, run.StartPos); err != nil {
		return nil, err
	}
	return runner.New(m, logger).Run(ctx, runner.Options{MaxSteps: run.MaxSteps})
}

// Summary counts passed and failed reports.
func Summary(reports []Report) (passed, failed int) {
	for _, r := range reports {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return
}
