package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/tapesim/internal/storage"
)

// Step is one trace row in export form.
type Step struct {
	Step  int    `json:"step"`
	State string `json:"state"`
	Heads []int  `json:"heads"`
}

// Run is a stored run with its trace inlined.
type Run struct {
	storage.RunMetadata
	Trace []Step `json:"trace"`
}

func NewRun(meta storage.RunMetadata, rows []storage.TraceRow) Run {
	run := Run{RunMetadata: meta, Trace: make([]Step, len(rows))}
	for i, r := range rows {
		run.Trace[i] = Step{Step: r.Step, State: r.State, Heads: r.Heads}
	}
	return run
}

// WriteJSON encodes meta and rows as one indented document.
func WriteJSON(w io.Writer, meta storage.RunMetadata, rows []storage.TraceRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewRun(meta, rows))
}
