package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/microfolio"
	"github.com/finbook/microfolio/renderer"
	"github.com/google/subcommands"
)

// monitorCmd holds the flags for the 'monitor' subcommand.
type monitorCmd struct{}

func (*monitorCmd) Name() string     { return "monitor" }
func (*monitorCmd) Synopsis() string { return "check data freshness and stop-loss buffers" }
func (*monitorCmd) Usage() string {
	return `mft monitor

  Checks the persisted data without fetching anything: how old the latest
  record is, which held symbols are missing a price, and how much room each
  position has above its stop-loss. Exits non-zero when any check fails, so
  it can gate a cron job or CI step.
`
}

func (*monitorCmd) SetFlags(*flag.FlagSet) {}

func (*monitorCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	latest, err := store.LatestValuation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	queue, err := store.LoadQueue()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	health := microfolio.NewHealth(cfg, latest, queue, microfolio.Today())
	printMarkdown(renderer.MonitorMarkdown(health))
	if !health.Healthy() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
