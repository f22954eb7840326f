package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProgram  = "copy"
	DefaultInput    = "hi my name is alan turing"
	DefaultDelay    = 250 * time.Millisecond
	DefaultWindow   = 20
	DefaultDataDir  = ".tapesim"
	DefaultLogLevel = "info"
)

type Config struct {
	Program     string        `yaml:"program"`
	ProgramFile string        `yaml:"program_file"`
	Tapes       int           `yaml:"tapes"`
	Input       string        `yaml:"input"`
	InputTape   int           `yaml:"input_tape"`
	StartPos    int           `yaml:"start_pos"`
	MaxSteps    int           `yaml:"max_steps"`
	Delay       time.Duration `yaml:"delay"`
	Window      int           `yaml:"window"`
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
	DataDir     string        `yaml:"data_dir"`
}

// DefaultConfig reproduces the six tape copy demonstration. Tapes of 0 means the
// program's own default.
func DefaultConfig() *Config {
	return &Config{
		Program:  DefaultProgram,
		Input:    DefaultInput,
		Delay:    DefaultDelay,
		Window:   DefaultWindow,
		LogLevel: DefaultLogLevel,
		DataDir:  DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Program == "" && c.ProgramFile == "" {
		return fmt.Errorf("either program or program_file is required")
	}
	if c.Tapes < 0 {
		return fmt.Errorf("tapes must be non-negative, got %d", c.Tapes)
	}
	if c.InputTape < 0 {
		return fmt.Errorf("input_tape must be non-negative, got %d", c.InputTape)
	}
	if c.Tapes > 0 && c.InputTape >= c.Tapes {
		return fmt.Errorf("input_tape %d out of range for %d tapes", c.InputTape, c.Tapes)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", c.MaxSteps)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %s", c.Delay)
	}
	if c.Window < 0 {
		return fmt.Errorf("window must be non-negative, got %d", c.Window)
	}
	return nil
}
