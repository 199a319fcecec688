package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/finbook/microfolio"
	"github.com/finbook/microfolio/renderer"
	"github.com/google/subcommands"
)

// queueCmd holds the flags for the 'queue' subcommand.
type queueCmd struct {
	sell string
	trim string
	add  string
	hold string
}

func (*queueCmd) Name() string     { return "queue" }
func (*queueCmd) Synopsis() string { return "list or append trading instructions" }
func (*queueCmd) Usage() string {
	return `mft queue [-sell <symbol>] [-trim <symbol>:<shares>] [-add <symbol>:<value>] [-hold <symbol>]

  Without flags, lists the instruction queue with each entry's status.
  With flags, appends the given pending instructions; they take effect on
  the next run.

Usage Examples:
# Queue a full liquidation and a $100 buy.
$ mft queue -sell ARQ -add GEVO:100
`
}

func (c *queueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sell, "sell", "", "Sell the full position of a symbol")
	f.StringVar(&c.trim, "trim", "", "Trim a position down to a share count, as <symbol>:<shares>")
	f.StringVar(&c.add, "add", "", "Buy whole shares for up to a cash value, as <symbol>:<value>")
	f.StringVar(&c.hold, "hold", "", "Record an explicit hold for a symbol")
}

// instructions builds the pending instructions from the flags, in a fixed
// flag order.
func (c *queueCmd) instructions() ([]microfolio.Instruction, error) {
	var out []microfolio.Instruction
	if c.sell != "" {
		out = append(out, microfolio.Instruction{Symbol: c.sell, Kind: microfolio.SellAll})
	}
	if c.trim != "" {
		symbol, arg, ok := cutArg(c.trim)
		if !ok {
			return nil, fmt.Errorf("-trim wants <symbol>:<shares>, got %q", c.trim)
		}
		qty, err := microfolio.ParseQuantity(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid share count %q: %w", arg, err)
		}
		out = append(out, microfolio.Instruction{Symbol: symbol, Kind: microfolio.TrimTo, TargetQuantity: qty})
	}
	if c.add != "" {
		symbol, arg, ok := cutArg(c.add)
		if !ok {
			return nil, fmt.Errorf("-add wants <symbol>:<value>, got %q", c.add)
		}
		value, err := microfolio.ParseMoney(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		out = append(out, microfolio.Instruction{Symbol: symbol, Kind: microfolio.Add, TargetValue: value})
	}
	if c.hold != "" {
		out = append(out, microfolio.Instruction{Symbol: c.hold, Kind: microfolio.Hold})
	}
	return out, nil
}

func cutArg(s string) (symbol, arg string, ok bool) {
	symbol, arg, ok = strings.Cut(s, ":")
	if symbol == "" || arg == "" {
		return "", "", false
	}
	return symbol, arg, ok
}

func (c *queueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	queue, err := store.LoadQueue()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ins, err := c.instructions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if len(ins) == 0 {
		printMarkdown(renderer.QueueMarkdown(queue))
		return subcommands.ExitSuccess
	}

	for _, in := range ins {
		if err := in.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		queue.Append(in)
		fmt.Printf("Queued %s\n", in.Describe())
	}
	if err := store.SaveQueue(queue); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
