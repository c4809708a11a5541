package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/patch"
	"drivermatrix/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, scanner *discovery.Scanner, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	root := lc.config.GetVersionsRoot()
	dirs, err := lc.scanner.Scan(root)
	if err != nil {
		return err
	}

	dirs = lc.scanner.FilterByName(dirs, lc.config.Flags.NameFilter)

	if len(dirs) == 0 {
		color.Yellow("No configurations found")
		return nil
	}

	rows := make([]ui.ConfigDirRow, 0, len(dirs))
	for _, dir := range dirs {
		artifacts, err := patch.Artifacts(dir.Path)
		if err != nil {
			return err
		}
		exclusions, err := discovery.LoadExclusions(dir)
		if err != nil {
			return err
		}
		rows = append(rows, ui.ConfigDirRow{
			Name:     dir.Name,
			Numeric:  dir.Tag.IsNumeric(),
			Patches:  len(artifacts),
			Excluded: len(exclusions.Tests),
		})
	}

	lc.formatter.PrintConfigDirs(root, rows)
	return nil
}
