package renderer

import (
	"bytes"
	"fmt"

	"github.com/finbook/microfolio"
	md "github.com/nao1215/markdown"
)

// MonitorMarkdown renders the health checks: data freshness, missing
// prices, stop-loss buffers and pending queue entries.
func MonitorMarkdown(h microfolio.Health) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Monitor %s", h.Checked))

	if h.LastRun.IsZero() {
		doc.PlainText("No run has been recorded yet.")
		return doc.String()
	}

	freshness := fmt.Sprintf("Last run %s (%d day(s) ago)", h.LastRun, h.DaysOld)
	if h.Stale {
		freshness += ", " + md.Bold("STALE")
	}
	doc.PlainText(freshness)

	if len(h.MissingPrices) > 0 {
		doc.H2("Missing Prices")
		doc.BulletList(h.MissingPrices...)
	}

	if len(h.Buffers) > 0 {
		doc.H2("Stop-Loss Buffers")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignLeft,
			},
			Header: []string{
				"Ticker",
				"Price",
				"Stop",
				"Buffer",
				"Level",
			},
		}
		for _, b := range h.Buffers {
			level := string(b.Level)
			if b.Level != microfolio.BufferHealthy {
				level = md.Bold(level)
			}
			table.Rows = append(table.Rows, []string{
				b.Symbol,
				b.Price.String(),
				b.Threshold.String(),
				b.Buffer.String(),
				level,
			})
		}
		doc.Table(table)
	}

	if h.PendingCount > 0 {
		doc.PlainText(fmt.Sprintf("%d pending instruction(s) in the queue.", h.PendingCount))
	}

	if h.Healthy() {
		doc.PlainText("All checks passed.")
	}
	return doc.String()
}
