package renderer

import (
	"strings"
	"testing"

	"github.com/finbook/microfolio"
)

func TestDailyMarkdown(t *testing.T) {
	prior := microfolio.M(1000)
	v := microfolio.Valuation{
		Date:       microfolio.MustParseDate("2025-08-22"),
		Cash:       microfolio.M(185),
		Holdings:   map[string]microfolio.Quantity{"GEVO": microfolio.Q(24)},
		Prices:     map[string]microfolio.Money{"GEVO": microfolio.M(1.74)},
		Values:     map[string]microfolio.Money{"GEVO": microfolio.M(41.76)},
		TotalValue: microfolio.M(226.76),
		PriorTotal: &prior,
	}
	d := microfolio.Delta{
		Symbols: map[string]microfolio.SymbolDelta{
			"GEVO": {PriceChange: microfolio.M(0.04), PriceChangePct: 2.35, ValueChange: microfolio.M(0.96)},
		},
		TotalChange:    microfolio.M(-773.24),
		TotalChangePct: -77.32,
	}
	log := microfolio.ExecutionLog{
		{
			Instruction: microfolio.Instruction{Symbol: "ARQ", Kind: microfolio.StopLoss, Status: microfolio.Executed},
			Symbol:      "ARQ",
			PriceUsed:   microfolio.M(5),
			SharesDelta: microfolio.Q(-37),
			CashDelta:   microfolio.M(185),
			Reason:      "stop loss triggered",
		},
		{
			Instruction: microfolio.Instruction{Symbol: "FEIM", Kind: microfolio.SellAll, Status: microfolio.Skipped},
			Symbol:      "FEIM",
			Reason:      "no shares held",
		},
	}

	md := DailyMarkdown(v, d, log)

	for _, want := range []string{
		"# Daily Report 2025-08-22",
		"$226.76",
		"$1,000.00",
		"GEVO",
		"## Executed",
		"stop loss triggered",
		"## Skipped",
		"no shares held",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report misses %q:\n%s", want, md)
		}
	}
}

func TestMonitorMarkdown(t *testing.T) {
	t.Run("no record", func(t *testing.T) {
		md := MonitorMarkdown(microfolio.Health{Checked: microfolio.MustParseDate("2025-08-22")})
		if !strings.Contains(md, "No run has been recorded yet.") {
			t.Errorf("report:\n%s", md)
		}
	})

	t.Run("flags", func(t *testing.T) {
		h := microfolio.Health{
			Checked:       microfolio.MustParseDate("2025-08-22"),
			LastRun:       microfolio.MustParseDate("2025-08-18"),
			DaysOld:       4,
			Stale:         true,
			MissingPrices: []string{"FEIM"},
			Buffers: []microfolio.StopBuffer{
				{Symbol: "ARQ", Price: microfolio.M(6.10), Threshold: microfolio.M(5.80), Buffer: 5.17, Level: microfolio.BufferCritical},
			},
			PendingCount: 2,
		}
		md := MonitorMarkdown(h)
		for _, want := range []string{"STALE", "FEIM", "CRITICAL", "2 pending"} {
			if !strings.Contains(md, want) {
				t.Errorf("report misses %q:\n%s", want, md)
			}
		}
	})
}

func TestHistoryMarkdown(t *testing.T) {
	vals := []microfolio.Valuation{
		{Date: microfolio.MustParseDate("2025-08-21"), TotalValue: microfolio.M(1000)},
		{Date: microfolio.MustParseDate("2025-08-22"), TotalValue: microfolio.M(950)},
	}
	md := HistoryMarkdown(vals)
	for _, want := range []string{"2025-08-21", "2025-08-22", "-$50.00", "-5.00%"} {
		if !strings.Contains(md, want) {
			t.Errorf("history misses %q:\n%s", want, md)
		}
	}
	if md := HistoryMarkdown(nil); !strings.Contains(md, "No run has been recorded yet.") {
		t.Errorf("empty history:\n%s", md)
	}
}

func TestQueueMarkdown(t *testing.T) {
	q := microfolio.NewQueue(
		microfolio.Instruction{Symbol: "ARQ", Kind: microfolio.SellAll, Status: microfolio.Pending},
		microfolio.Instruction{Symbol: "CDXS", Kind: microfolio.Add, TargetValue: microfolio.M(100), Status: microfolio.Executed},
	)
	md := QueueMarkdown(q)
	for _, want := range []string{"SELL_ALL ARQ", "ADD CDXS $100.00", "PENDING", "EXECUTED"} {
		if !strings.Contains(md, want) {
			t.Errorf("queue misses %q:\n%s", want, md)
		}
	}
	if md := QueueMarkdown(microfolio.NewQueue()); !strings.Contains(md, "The queue is empty.") {
		t.Errorf("empty queue:\n%s", md)
	}
}
