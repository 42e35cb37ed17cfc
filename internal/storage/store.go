// Package storage keeps headless run reports on disk: one directory per run
// holding metadata.json, the visit order in trace.csv and the per-tick cursor
// samples in samples.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gridsearch/internal/automation"
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
)

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("storage: run not found")

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
	ID         string             `json:"id"`
	Script     string             `json:"script"`
	Timestamp  time.Time          `json:"timestamp"`
	Algorithm  string             `json:"algorithm"`
	Neighbours string             `json:"neighbours"`
	Seed       int64              `json:"seed"`
	Graph      config.GraphConfig `json:"graph"`
	Start      grid.Coordinate    `json:"start"`
	Ticks      int                `json:"ticks"`
	TraceLen   int                `json:"trace_len"`
	Cursor     int                `json:"cursor"`
	Complete   bool               `json:"complete"`
	Hangs      int                `json:"hangs"`
}

// Run is everything saved for one headless run.
type Run struct {
	Meta    RunMetadata
	Trace   []grid.Coordinate
	Samples []automation.Sample
}

// Save writes run under a fresh id and returns it.
func (s *Store) Save(run *Run) (string, error) {
	if run.Meta.Timestamp.IsZero() {
		run.Meta.Timestamp = time.Now()
	}
	runID := fmt.Sprintf("%s_%d", run.Meta.Algorithm, run.Meta.Timestamp.UnixNano())
	run.Meta.ID = runID
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), run.Meta); err != nil {
		return "", err
	}

	traceRows := make([][]string, 0, len(run.Trace)+1)
	traceRows = append(traceRows, []string{"index", "x", "y"})
	for i, c := range run.Trace {
		traceRows = append(traceRows, []string{strconv.Itoa(i), strconv.Itoa(c.X), strconv.Itoa(c.Y)})
	}
	if err := writeCSV(filepath.Join(runDir, "trace.csv"), traceRows); err != nil {
		return "", err
	}

	sampleRows := make([][]string, 0, len(run.Samples)+1)
	sampleRows = append(sampleRows, []string{"tick", "cursor", "len", "state"})
	for _, smp := range run.Samples {
		sampleRows = append(sampleRows, []string{
			strconv.Itoa(smp.Tick), strconv.Itoa(smp.Cursor), strconv.Itoa(smp.Len), smp.State.String(),
		})
	}
	if err := writeCSV(filepath.Join(runDir, "samples.csv"), sampleRows); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeCSV(path string, rows [][]string) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

// writeFile creates path and runs write on it. A failed Close is reported
// when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("storage: close %s: %w", filepath.Base(path), cerr)
		}
	}()
	return write(f)
}

// List returns every readable run, oldest first.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]grid.Coordinate, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	cells := make([]grid.Coordinate, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		x, errX := strconv.Atoi(record[1])
		y, errY := strconv.Atoi(record[2])
		if errX != nil || errY != nil {
			continue
		}
		cells = append(cells, grid.Coordinate{X: x, Y: y})
	}
	return cells, nil
}

// LoadSamples returns the cursor and trace length recorded after every tick.
func (s *Store) LoadSamples(runID string) (cursor, length []float64, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, nil, err
	}
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		c, errC := strconv.ParseFloat(record[1], 64)
		n, errN := strconv.ParseFloat(record[2], 64)
		if errC != nil || errN != nil {
			continue
		}
		cursor = append(cursor, c)
		length = append(length, n)
	}
	return cursor, length, nil
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, filepath.Base(filepath.Dir(path)))
		}
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
		return [][]string{}, nil
	}
	return records[1:], nil
}
