package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"
)

// Store keeps one directory per finished run. Records describe what happened;
// they are not snapshots a machine can be restored from.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Program   string    `json:"program"`
	Input     string    `json:"input"`
	Tapes     int       `json:"tapes"`
	Timestamp time.Time `json:"timestamp"`
	Steps     int       `json:"steps"`
	State     string    `json:"state"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason"`
	Halted    bool      `json:"halted"`
	Error     string    `json:"error,omitempty"`
	Contents  []string  `json:"contents"`
}

// TraceRow is one line of trace.csv.
type TraceRow struct {
	Step  int
	State string
	Heads []int
}

// Save writes meta and trace under a fresh run ID, which is returned.
func (s *Store) Save(meta RunMetadata, trace []TraceRow) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Program, xid.New().String())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeTrace(filepath.Join(runDir, "trace.csv"), meta.Tapes, trace); err != nil {
		return "", err
	}
	return runID, nil
}

func writeTrace(path string, tapes int, trace []TraceRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"step", "state"}
	for i := 0; i < tapes; i++ {
		header = append(header, fmt.Sprintf("h%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range trace {
		rec := []string{strconv.Itoa(row.Step), row.State}
		for _, h := range row.Heads {
			rec = append(rec, strconv.Itoa(h))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]TraceRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TraceRow{}, nil
	}

	rows := make([]TraceRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, fmt.Errorf("trace line %d: short record", i+2)
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", i+2, err)
		}
		row := TraceRow{Step: step, State: record[1], Heads: make([]int, 0, len(record)-2)}
		for _, field := range record[2:] {
			h, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("trace line %d: %w", i+2, err)
			}
			row.Heads = append(row.Heads, h)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
