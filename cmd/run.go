package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/microfolio"
	"github.com/finbook/microfolio/alphavantage"
	"github.com/finbook/microfolio/renderer"
	"github.com/google/subcommands"
)

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	date string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "fetch prices, apply the queue, and record the day's valuation" }
func (*runCmd) Usage() string {
	return `mft run [-d <date>]

  Performs the daily update: fetches closing prices for the configured
  universe, applies pending instructions and stop-losses, then persists the
  new state, the valuation record, and the rendered report.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the run (defaults to today)")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on := microfolio.Today()
	if c.date != "" {
		var err error
		on, err = microfolio.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date %q: %v\n", c.date, err)
			return subcommands.ExitUsageError
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	engine, err := microfolio.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	state, found, err := store.LoadState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !found {
		// First run: start from the configured seed portfolio.
		state = cfg.Seed
	}
	queue, err := store.LoadQueue()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	prior, err := store.LatestValuation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client := alphavantage.NewClient(os.Getenv("ALPHAVANTAGE_API_KEY"))
	prices, err := client.Snapshot(ctx, on, cfg.Symbols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := engine.Run(state, prices, queue, prior)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	delta := microfolio.NewDelta(result.Valuation, prior)
	md := renderer.DailyMarkdown(result.Valuation, delta, result.Log)

	// Persist everything only after the run fully succeeded.
	if err := store.SaveState(result.State); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.SaveQueue(queue); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.AppendValuation(result.Valuation); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	vals, err := store.Valuations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.WriteHistoryCSV(cfg.Symbols, vals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.WriteReport(md); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(md)
	return subcommands.ExitSuccess
}
