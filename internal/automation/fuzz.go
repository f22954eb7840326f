package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/tapesim/internal/machine"
	"github.com/san-kum/tapesim/internal/program"
	"github.com/san-kum/tapesim/internal/runner"
)

// FuzzConfig defines a batch of runs on random inputs.
type FuzzConfig struct {
	Program     string
	ProgramFile string
	Tapes       int
	Alphabet    string
	MinLen      int
	MaxLen      int
	Trials      int
	MaxSteps    int
	Workers     int
	Seed        int64
}

// Trial is the outcome of one random input. Outcome is Running when the step
// limit was hit first.
type Trial struct {
	ID      int
	Input   string
	Outcome machine.Outcome
	Steps   int
	Err     error
}

func (c *FuzzConfig) validate() error {
	if len(c.Alphabet) == 0 {
		return fmt.Errorf("alphabet must not be empty")
	}
	if c.MinLen < 0 || c.MaxLen < c.MinLen {
		return fmt.Errorf("invalid input length range [%d, %d]", c.MinLen, c.MaxLen)
	}
	if c.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	return nil
}

// RunFuzz runs every trial on its own machine across a fixed set of workers.
// Trial i draws its input from a generator seeded with Seed+i, so results do
// not depend on scheduling.
func RunFuzz(ctx context.Context, cfg *FuzzConfig, registry *program.Registry, logger *slog.Logger) ([]Trial, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	def, err := registry.Resolve(cfg.Program, cfg.ProgramFile, cfg.Tapes)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}
	alphabet := []rune(cfg.Alphabet)

	trials := make([]Trial, cfg.Trials)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rng := rand.New(rand.NewSource(seed + int64(idx)))
				input := randomInput(rng, alphabet, cfg.MinLen, cfg.MaxLen)
				trials[idx] = runTrial(ctx, def, input, cfg.MaxSteps)
				trials[idx].ID = idx
			}
		}()
	}

feed:
	for i := 0; i < cfg.Trials; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("fuzz complete", "program", def.Name, "trials", cfg.Trials, "seed", seed)
	}
	return trials, nil
}

func randomInput(rng *rand.Rand, alphabet []rune, minLen, maxLen int) string {
	n := minLen + rng.Intn(maxLen-minLen+1)
	out := make([]rune, n)
	for i := range out {
		out[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(out)
}

func runTrial(ctx context.Context, def *program.Definition, input string, maxSteps int) Trial {
	t := Trial{Input: input}
	m, err := def.Build()
	if err != nil {
		t.Err = err
		return t
	}
	if err := m.LoadInput([]rune(input), 0, 0); err != nil {
		t.Err = err
		return t
	}
	res, err := runner.New(m, nil).Run(ctx, runner.Options{MaxSteps: maxSteps})
	t.Err = err
	if res != nil {
		t.Outcome = res.Outcome
		t.Steps = res.Steps
	}
	return t
}

// Tally counts trials per outcome. Failed trials are counted under errors.
func Tally(trials []Trial) (outcomes map[machine.Outcome]int, errors int) {
	outcomes = make(map[machine.Outcome]int)
	for _, t := range trials {
		if t.Err != nil {
			errors++
			continue
		}
		outcomes[t.Outcome]++
	}
	return
}
