// Package cmd implements the CLI application to run and inspect the tracker.
package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/finbook/microfolio"
	"github.com/google/subcommands"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&runCmd{},
	&queueCmd{},
	&reportCmd{},
	&historyCmd{},
	&monitorCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storeDir = flag.String("dir", "data", "Path to the data directory holding state, queue and history")
var configFile = flag.String("config", "microfolio.yaml", "Path to the portfolio configuration file")

// loadConfig reads the app configuration file.
func loadConfig() (microfolio.Config, error) {
	return microfolio.LoadConfig(*configFile)
}

// openStore opens the app data directory.
func openStore() (*microfolio.Store, error) {
	return microfolio.NewStore(*storeDir)
}

// printMarkdown renders a markdown document for the terminal. When the
// terminal renderer fails (dumb terminal, broken env) the raw markdown is
// printed instead; the report is never lost.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
