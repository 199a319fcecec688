package renderer

import (
	"bytes"
	"fmt"

	"github.com/finbook/microfolio"
	md "github.com/nao1215/markdown"
)

// QueueMarkdown renders the instruction queue with the status of every entry.
func QueueMarkdown(q *microfolio.Queue) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Instruction Queue")
	items := q.Items()
	if len(items) == 0 {
		doc.PlainText("The queue is empty.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{
			"#",
			"Instruction",
			"Status",
		},
	}
	for i, in := range items {
		status := string(in.Status)
		if in.Status == microfolio.Pending {
			status = md.Bold(status)
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", i+1),
			in.Describe(),
			status,
		})
	}
	doc.Table(table)
	return doc.String()
}
