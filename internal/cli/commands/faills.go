package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"drivermatrix/internal/config"
	"drivermatrix/internal/storage"
	"drivermatrix/internal/ui"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	config    *config.Config
	storage   storage.Storage
	viewer    ui.Viewer
	formatter *ui.Formatter
	// interactive reports whether the TUI can be used
	interactive func() bool
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(cfg *config.Config, st storage.Storage, viewer ui.Viewer, formatter *ui.Formatter) *FaillsCommand {
	return &FaillsCommand{
		config:    cfg,
		storage:   st,
		viewer:    viewer,
		formatter: formatter,
		interactive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd())
		},
	}
}

// Execute runs the command. Without a terminal the statistics of the last
// run are printed instead.
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.storage.Load()
	if err != nil {
		return err
	}

	if !fc.interactive() {
		fc.formatter.PrintMetaStats(results)
		return nil
	}
	return fc.viewer.View(results)
}
