package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"drivermatrix/internal/config"
	"drivermatrix/internal/storage"
	"drivermatrix/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config, formatter *ui.Formatter) *HistoryCommand {
	return &HistoryCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	if hc.config.HistoryDSN == "" {
		return errors.New("no history database: set --history-dsn or DRIVERMATRIX_HISTORY_DSN")
	}

	ctx := commandContext(cmd)
	store, err := storage.OpenHistoryStore(ctx, hc.config.HistoryDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, hc.config.Flags.Limit)
	if err != nil {
		return err
	}
	hc.formatter.PrintHistory(runs)
	return nil
}
