package renderer

import (
	"bytes"
	"fmt"

	"github.com/finbook/microfolio"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the valuation history, one row per run with the
// day-over-day change recomputed between consecutive records.
func HistoryMarkdown(vals []microfolio.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio History")
	if len(vals) == 0 {
		doc.PlainText("No run has been recorded yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{
			"Date",
			"Total Value",
			"Cash",
			"Day's Change",
		},
	}
	var prior *microfolio.Valuation
	for i := range vals {
		v := vals[i]
		d := microfolio.NewDelta(v, prior)
		change := ""
		if prior != nil {
			change = fmt.Sprintf("%s %s", d.TotalChange.SignedString(), d.TotalChangePct.SignedString())
		}
		table.Rows = append(table.Rows, []string{
			v.Date.String(),
			v.TotalValue.String(),
			v.Cash.String(),
			change,
		})
		prior = &vals[i]
	}
	doc.Table(table)
	return doc.String()
}
