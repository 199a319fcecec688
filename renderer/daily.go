// Package renderer turns the tracker's records into markdown documents.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/finbook/microfolio"
	md "github.com/nao1215/markdown"
)

// DailyMarkdown renders the report of one run: portfolio value, day-over-day
// changes, positions, and the run's execution log.
func DailyMarkdown(v microfolio.Valuation, d microfolio.Delta, log microfolio.ExecutionLog) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Daily Report %s", v.Date))

	summary := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Value"),
			md.Bold(v.TotalValue.String()),
		},
		Rows: [][]string{
			{"Cash", v.Cash.String()},
		},
	}
	if v.PriorTotal != nil {
		summary.Rows = append(summary.Rows,
			[]string{"Value at Prev. Close", v.PriorTotal.String()},
			[]string{"Day's Change", fmt.Sprintf("%s %s", d.TotalChange.SignedString(), d.TotalChangePct.SignedString())},
		)
	}
	doc.Table(summary)

	if len(v.Holdings) > 0 {
		doc.H2("Positions")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{
				"Ticker",
				"Shares",
				"Price",
				"Value",
				"Day's Change",
			},
		}
		for symbol, qty := range sorted(v.Holdings) {
			price := "n/a"
			if p, ok := v.Prices[symbol]; ok {
				price = p.String()
			}
			sd := d.Symbol(symbol)
			change := ""
			if !sd.PriceChange.IsZero() {
				change = fmt.Sprintf("%s %s", sd.PriceChange.SignedString(), sd.PriceChangePct.SignedString())
			}
			table.Rows = append(table.Rows, []string{
				symbol,
				qty.String(),
				price,
				v.PositionValue(symbol).String(),
				change,
			})
		}
		doc.Table(table)
	}

	if executed := log.Executed(); len(executed) > 0 {
		doc.H2("Executed")
		var lines []string
		for _, e := range executed {
			lines = append(lines, e.Describe())
		}
		doc.OrderedList(lines...)
	}
	if skipped := log.Skipped(); len(skipped) > 0 {
		doc.H2("Skipped")
		var lines []string
		for _, e := range skipped {
			lines = append(lines, e.Describe())
		}
		doc.BulletList(lines...)
	}

	return doc.String()
}
