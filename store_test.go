package microfolio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	return s
}

func TestStore_StateRoundTrip(t *testing.T) {
	s := testStore(t)

	if _, found, err := s.LoadState(); err != nil || found {
		t.Fatalf("LoadState() on empty store = found %v, err %v", found, err)
	}

	state := NewState(M(54.84), map[string]Quantity{"CDXS": Q(12)}, MustParseDate("2025-08-22"))
	if err := s.SaveState(state); err != nil {
		t.Fatalf("SaveState() = %v", err)
	}
	got, found, err := s.LoadState()
	if err != nil || !found {
		t.Fatalf("LoadState() = found %v, err %v", found, err)
	}
	if !got.Equal(state) {
		t.Errorf("loaded state = %+v, want %+v", got, state)
	}
}

func TestStore_SaveStateRefusesInvalid(t *testing.T) {
	s := testStore(t)
	if err := s.SaveState(State{cash: M(-1)}); err == nil {
		t.Error("SaveState accepted a negative cash state")
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "state.json")); !os.IsNotExist(err) {
		t.Error("an invalid state reached the disk")
	}
}

func TestStore_QueueRoundTrip(t *testing.T) {
	s := testStore(t)

	q, err := s.LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue() on empty store = %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("empty store queue has %d entries", q.Len())
	}

	q.Append(Instruction{Symbol: "ARQ", Kind: SellAll})
	if err := s.SaveQueue(q); err != nil {
		t.Fatalf("SaveQueue() = %v", err)
	}
	got, err := s.LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue() = %v", err)
	}
	if got.Len() != 1 || got.Items()[0].Status != Pending {
		t.Errorf("loaded queue = %+v", got.Items())
	}
}

func TestStore_AppendValuation(t *testing.T) {
	s := testStore(t)

	if latest, err := s.LatestValuation(); err != nil || latest != nil {
		t.Fatalf("LatestValuation() on empty store = %v, %v", latest, err)
	}

	day1 := Valuation{Date: MustParseDate("2025-08-21"), TotalValue: M(1000)}
	day2 := Valuation{Date: MustParseDate("2025-08-22"), TotalValue: M(950)}
	for _, v := range []Valuation{day1, day2} {
		if err := s.AppendValuation(v); err != nil {
			t.Fatalf("AppendValuation(%s) = %v", v.Date, err)
		}
	}

	// A re-run of the same day replaces the last record, never duplicates it.
	day2.TotalValue = M(960)
	if err := s.AppendValuation(day2); err != nil {
		t.Fatalf("AppendValuation(rerun) = %v", err)
	}

	vals, err := s.Valuations()
	if err != nil {
		t.Fatalf("Valuations() = %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("history has %d records, want 2", len(vals))
	}
	if !vals[1].TotalValue.Equal(M(960)) {
		t.Errorf("rerun record total = %s, want $960.00", vals[1].TotalValue)
	}
	latest, err := s.LatestValuation()
	if err != nil || latest == nil || latest.Date != day2.Date {
		t.Errorf("LatestValuation() = %v, %v", latest, err)
	}
}

func TestStore_WriteHistoryCSV(t *testing.T) {
	s := testStore(t)
	symbols := []string{"ARQ"}
	vals := []Valuation{
		{
			Date:       MustParseDate("2025-08-21"),
			Cash:       M(0),
			Holdings:   map[string]Quantity{"ARQ": Q(37)},
			Prices:     map[string]Money{"ARQ": M(6.00)},
			Values:     map[string]Money{"ARQ": M(222.00)},
			TotalValue: M(222.00),
		},
		{
			Date:       MustParseDate("2025-08-22"),
			Cash:       M(0),
			Holdings:   map[string]Quantity{"ARQ": Q(37)},
			Prices:     map[string]Money{"ARQ": M(5.00)},
			Values:     map[string]Money{"ARQ": M(185.00)},
			TotalValue: M(185.00),
		},
	}
	if err := s.WriteHistoryCSV(symbols, vals); err != nil {
		t.Fatalf("WriteHistoryCSV() = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "history.csv"))
	if err != nil {
		t.Fatalf("cannot read history.csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("history.csv is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("history.csv has %d rows, want header + 2", len(rows))
	}

	header := rows[0]
	byName := func(row []string, name string) string {
		for i, h := range header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %q in %v", name, header)
		return ""
	}
	// First row has no prior record: change columns are zero.
	if got := byName(rows[1], "portfolio_change"); got != "0.00" {
		t.Errorf("first portfolio_change = %s, want 0.00", got)
	}
	if got := byName(rows[2], "ARQ_price_change"); got != "-1.0000" {
		t.Errorf("ARQ_price_change = %s, want -1.0000", got)
	}
	if got := byName(rows[2], "portfolio_change"); got != "-37.00" {
		t.Errorf("portfolio_change = %s, want -37.00", got)
	}
}

func TestStore_Report(t *testing.T) {
	s := testStore(t)
	if md, err := s.Report(); err != nil || md != "" {
		t.Fatalf("Report() on empty store = %q, %v", md, err)
	}
	if err := s.WriteReport("# Daily Report\n"); err != nil {
		t.Fatalf("WriteReport() = %v", err)
	}
	md, err := s.Report()
	if err != nil || md != "# Daily Report\n" {
		t.Errorf("Report() = %q, %v", md, err)
	}
}
