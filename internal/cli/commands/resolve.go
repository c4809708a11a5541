package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/ui"
)

// ResolveCommand handles the resolve command
type ResolveCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	formatter *ui.Formatter
}

// NewResolveCommand creates a new ResolveCommand
func NewResolveCommand(cfg *config.Config, scanner *discovery.Scanner, formatter *ui.Formatter) *ResolveCommand {
	return &ResolveCommand{
		config:    cfg,
		scanner:   scanner,
		formatter: formatter,
	}
}

// Execute runs the command
func (rc *ResolveCommand) Execute(cmd *cobra.Command, args []string) error {
	versions := config.SplitList(args)
	if len(versions) == 0 {
		versions = rc.config.Versions
	}

	resolver := discovery.NewResolver(rc.config.GetVersionsRoot(), rc.scanner)

	rows := make([]ui.Resolution, 0, len(versions))
	unresolved := 0
	for _, v := range versions {
		dir, err := resolver.Resolve(v)
		if err != nil {
			unresolved++
			rows = append(rows, ui.Resolution{Version: v, Err: err})
			continue
		}
		rows = append(rows, ui.Resolution{Version: v, Dir: dir.Path})
	}
	rc.formatter.PrintResolutions(rows)

	if unresolved > 0 {
		return fmt.Errorf("%w: %d of %d version(s) cannot be tested", discovery.ErrNoConfiguration, unresolved, len(versions))
	}
	return nil
}
