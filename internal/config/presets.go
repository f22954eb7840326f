package config

import (
	"sort"
	"time"
)

var Presets = map[string]map[string]*Config{
	"copy": {
		"demo": {
			Program: "copy", Tapes: 6, Input: DefaultInput,
			Delay: DefaultDelay, Window: DefaultWindow,
		},
		"short": {
			Program: "copy", Tapes: 2, Input: "ab",
			Delay: DefaultDelay, Window: 8,
		},
		"offset": {
			Program: "copy", Tapes: 3, Input: "turing", StartPos: -3,
			Delay: DefaultDelay, Window: 12,
		},
	},
	"increment": {
		"carry": {
			Program: "increment", Tapes: 1, Input: "1011",
			Delay: DefaultDelay, Window: 8,
		},
		"overflow": {
			Program: "increment", Tapes: 1, Input: "11111111",
			Delay: DefaultDelay, Window: 12,
		},
	},
	"palindrome": {
		"racecar": {
			Program: "palindrome", Tapes: 2, Input: "racecar",
			Delay: 100 * time.Millisecond, Window: 10,
		},
		"reject": {
			Program: "palindrome", Tapes: 2, Input: "turing",
			Delay: 100 * time.Millisecond, Window: 10,
		},
	},
}

// GetPreset returns a copy so callers may override fields freely.
func GetPreset(program, preset string) *Config {
	programPresets, ok := Presets[program]
	if !ok {
		return nil
	}
	cfg, ok := programPresets[preset]
	if !ok {
		return nil
	}
	out := *DefaultConfig()
	out.Program = cfg.Program
	out.Tapes = cfg.Tapes
	out.Input = cfg.Input
	out.StartPos = cfg.StartPos
	out.Delay = cfg.Delay
	out.Window = cfg.Window
	return &out
}

func ListPresets(program string) []string {
	programPresets, ok := Presets[program]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(programPresets))
	for name := range programPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
