package microfolio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// The store persists everything under a single directory, in formats that
// are human-readable and git-friendly:
//
//	state.json       current portfolio state
//	queue.json       instruction queue, externally writable
//	valuations.jsonl one valuation record per line, append-only history
//	history.csv      spreadsheet-friendly view of the same history
//	latest_report.md rendered report of the most recent run
const (
	stateFilename      = "state.json"
	queueFilename      = "queue.json"
	valuationsFilename = "valuations.jsonl"
	historyFilename    = "history.csv"
	reportFilename     = "latest_report.md"
)

// Store is the persistence gateway for state, instruction queue, and
// valuation history. Every full-file write goes through a temp file and a
// rename, so a failed run never tears the previous known-good files.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) a store directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create store directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// writeFileAtomic writes data to path via a temporary file and a rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file for %q: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write temp file for %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot close temp file for %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot replace %q: %w", path, err)
	}
	return nil
}

// LoadState reads the persisted state. The boolean is false when no state
// has been persisted yet (first run).
func (s *Store) LoadState() (State, bool, error) {
	data, err := os.ReadFile(s.path(stateFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("cannot read state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, false, fmt.Errorf("cannot decode state: %w", err)
	}
	return state, true, nil
}

// SaveState persists the state atomically.
func (s *Store) SaveState(state State) error {
	if err := state.Check(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode state: %w", err)
	}
	return writeFileAtomic(s.path(stateFilename), append(data, '\n'))
}

// LoadQueue reads the instruction queue, empty when none exists yet.
func (s *Store) LoadQueue() (*Queue, error) {
	f, err := os.Open(s.path(queueFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return NewQueue(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read queue: %w", err)
	}
	defer f.Close()
	q, err := DecodeQueue(f)
	if err != nil {
		return nil, fmt.Errorf("queue file %q: %w", s.path(queueFilename), err)
	}
	return q, nil
}

// SaveQueue persists the instruction queue atomically, statuses included,
// so an instruction applied in this run is never re-applied in the next.
func (s *Store) SaveQueue(q *Queue) error {
	var buf bytes.Buffer
	if err := EncodeQueue(&buf, q); err != nil {
		return err
	}
	return writeFileAtomic(s.path(queueFilename), buf.Bytes())
}

// Valuations reads the whole valuation history, oldest first.
func (s *Store) Valuations() ([]Valuation, error) {
	f, err := os.Open(s.path(valuationsFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read valuations: %w", err)
	}
	defer f.Close()

	var out []Valuation
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		var v Valuation
		if err := json.Unmarshal([]byte(txt), &v); err != nil {
			return nil, fmt.Errorf("valuations line %d: %w", line, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read valuations: %w", err)
	}
	return out, nil
}

// LatestValuation returns the most recent valuation record, nil when the
// history is empty. A missing history is a cold start, not an error.
func (s *Store) LatestValuation() (*Valuation, error) {
	vals, err := s.Valuations()
	if err != nil || len(vals) == 0 {
		return nil, err
	}
	return &vals[len(vals)-1], nil
}

// AppendValuation appends one record to the valuation history. If a record
// for the same date is already the last line (a re-run of the same day),
// it is replaced instead of duplicated.
func (s *Store) AppendValuation(v Valuation) error {
	vals, err := s.Valuations()
	if err != nil {
		return err
	}
	if n := len(vals); n > 0 && vals[n-1].Date == v.Date {
		vals[n-1] = v
	} else {
		vals = append(vals, v)
	}

	var buf bytes.Buffer
	for _, val := range vals {
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("cannot encode valuation for %s: %w", val.Date, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return writeFileAtomic(s.path(valuationsFilename), buf.Bytes())
}

// WriteHistoryCSV regenerates the spreadsheet view of the valuation
// history, one row per run with per-symbol price, quantity, value and
// day-over-day change columns. Rewriting the whole file keeps the change
// columns consistent even after a historical record is amended.
func (s *Store) WriteHistoryCSV(symbols []string, vals []Valuation) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "total_value", "cash"}
	for _, symbol := range symbols {
		header = append(header, symbol+"_price", symbol+"_qty", symbol+"_value")
	}
	for _, symbol := range symbols {
		header = append(header, symbol+"_price_change", symbol+"_price_change_pct", symbol+"_value_change")
	}
	header = append(header, "portfolio_change", "portfolio_change_pct")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write history header: %w", err)
	}

	var prior *Valuation
	for i := range vals {
		v := vals[i]
		delta := NewDelta(v, prior)

		row := []string{v.Date.String(), v.TotalValue.Fixed(2), v.Cash.Fixed(2)}
		for _, symbol := range symbols {
			price, qty, value := "", "0", "0.00"
			if p, ok := v.Prices[symbol]; ok {
				price = p.Fixed(4)
			}
			if q, ok := v.Holdings[symbol]; ok {
				qty = q.String()
			}
			if val, ok := v.Values[symbol]; ok {
				value = val.Fixed(2)
			}
			row = append(row, price, qty, value)
		}
		for _, symbol := range symbols {
			sd := delta.Symbol(symbol)
			row = append(row,
				sd.PriceChange.Fixed(4),
				fmt.Sprintf("%.2f", float64(sd.PriceChangePct)),
				sd.ValueChange.Fixed(2))
		}
		row = append(row,
			delta.TotalChange.Fixed(2),
			fmt.Sprintf("%.2f", float64(delta.TotalChangePct)))
		if err := w.Write(row); err != nil {
			return fmt.Errorf("cannot write history row for %s: %w", v.Date, err)
		}
		prior = &vals[i]
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot write history: %w", err)
	}
	return writeFileAtomic(s.path(historyFilename), buf.Bytes())
}

// WriteReport persists the rendered markdown report of the latest run.
func (s *Store) WriteReport(md string) error {
	return writeFileAtomic(s.path(reportFilename), []byte(md))
}

// Report reads back the persisted report of the latest run, empty when no
// run has been recorded yet.
func (s *Store) Report() (string, error) {
	data, err := os.ReadFile(s.path(reportFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot read report: %w", err)
	}
	return string(data), nil
}
