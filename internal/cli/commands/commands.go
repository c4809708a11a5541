package commands

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"drivermatrix/internal/cli"
	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/logging"
	"drivermatrix/internal/parser"
	"drivermatrix/internal/storage"
	"drivermatrix/internal/ui"
)

// ErrMatrixFailed is returned when at least one version did not pass
var ErrMatrixFailed = errors.New("matrix failed")

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	Resolve *ResolveCommand
	List    *ListCommand
	Faills  *FaillsCommand
	History *HistoryCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	scanner := discovery.NewScanner()
	gtestParser := parser.NewGTestParser()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(os.Stdout)
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:     NewRunCommand(cfg, scanner, gtestParser, jsonStorage, formatter, errorViewer),
		Resolve: NewResolveCommand(cfg, scanner, formatter),
		List:    NewListCommand(cfg, scanner, formatter),
		Faills:  NewFaillsCommand(cfg, jsonStorage, errorViewer, formatter),
		History: NewHistoryCommand(cfg, formatter),
	}
}

// newLogger builds the root logger from the loaded configuration
func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(logging.Options{Level: cfg.LogLevel})
}

// commandContext returns the context of a running command
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Update config with flags after parsing
	loadConfig := func(cmd *cobra.Command, args []string) error {
		return cfg.Apply(flags.ToConfigFlags())
	}

	rootCmd.PersistentFlags().StringVarP(&flags.DriverType, "driver-type", "d", config.DefaultDriverType, "Driver type to test (scylla, datastax)")
	rootCmd.PersistentFlags().StringVar(&flags.VersionsRoot, "versions-root", "", "Directory holding one configuration root per driver type (default \"versions\")")
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", config.DefaultEnvFile, "Dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run <driver-dir> [server-install-dir]",
		Short:   "Run the integration tests against every version",
		Long:    "Check out, patch, build and test the driver for each requested version, then report the matrix",
		Args:    cobra.RangeArgs(1, 2),
		RunE:    c.Run.Execute,
		PreRunE: loadConfig,
	}
	runCmd.Flags().StringSliceVarP(&flags.Versions, "versions", "v", nil, "Driver versions to test, comma separated (default \"master\")")
	runCmd.Flags().StringVar(&flags.ServerVersion, "scylla-version", "", "Relocatable server version, exported as SCYLLA_VERSION to the tests")
	runCmd.Flags().StringVar(&flags.CQLVersion, "cql-cassandra-version", "", "Value passed as --version to the test binary instead of the driver version")
	runCmd.Flags().StringVar(&flags.SummaryFile, "summary-file", "", "Append a plain text summary of every version to this file")
	runCmd.Flags().StringVar(&flags.JUnitDir, "junit-dir", "", "Write a JUnit XML report per version into this directory")
	runCmd.Flags().StringVar(&flags.CheckoutPolicy, "on-checkout-failure", "", "What to do when git checkout fails: continue or abort (default \"continue\")")
	runCmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "MySQL DSN where every run is recorded")
	runCmd.Flags().StringSliceVar(&flags.EmailTo, "email-to", nil, "Email the matrix summary to these addresses")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Disable the progress bar")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// Resolve command
	resolveCmd := &cobra.Command{
		Use:     "resolve [version...]",
		Short:   "Show which configuration serves each version",
		Long:    "Resolve versions to configuration directories without running anything",
		RunE:    c.Resolve.Execute,
		PreRunE: loadConfig,
	}
	rootCmd.AddCommand(resolveCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List configuration directories",
		Long:    "List the configuration directories of a driver type with their patches and excluded tests",
		RunE:    c.List.Execute,
		PreRunE: loadConfig,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter directories by name pattern (supports wildcards, e.g. '2.1*')")
	rootCmd.AddCommand(listCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:     "faills",
		Short:   "View matrix failures interactively",
		Long:    "Display failing tests of the last matrix run in an interactive viewer",
		RunE:    c.Faills.Execute,
		PreRunE: loadConfig,
	}
	rootCmd.AddCommand(faillsCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recorded runs",
		Long:    "Print the most recent matrix runs recorded in MySQL",
		RunE:    c.History.Execute,
		PreRunE: loadConfig,
	}
	historyCmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "MySQL DSN where runs are recorded")
	historyCmd.Flags().IntVarP(&flags.Limit, "limit", "n", 20, "Number of rows to show")
	rootCmd.AddCommand(historyCmd)
}
