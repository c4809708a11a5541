package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"drivermatrix/internal/cli"
	"drivermatrix/internal/cli/commands"
	"drivermatrix/internal/config"
	"drivermatrix/internal/exitcodes"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "drivermatrix",
		Short:         "C++ driver integration test matrix",
		Long:          `Run the integration tests of the scylla or datastax C++ driver against a list of driver versions, applying the patch and test exclusions stored for each version.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Stop between versions on Ctrl+C; the running process gets the signal too
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitcodes.Failure)
	}
}
