package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finbook/microfolio/renderer"
	"github.com/google/subcommands"
)

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	backfill bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the valuation history" }
func (*historyCmd) Usage() string {
	return `mft history [-backfill]

  Displays the valuation history, one row per recorded run with the
  day-over-day change. With -backfill, also regenerates history.csv from
  the full record history, recomputing every change column.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.backfill, "backfill", false, "regenerate history.csv with recomputed change columns")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	vals, err := store.Valuations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.backfill {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := store.WriteHistoryCSV(cfg.Symbols, vals); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Rebuilt %s from %d record(s)\n", filepath.Join(store.Dir(), "history.csv"), len(vals))
	}

	printMarkdown(renderer.HistoryMarkdown(vals))
	return subcommands.ExitSuccess
}
