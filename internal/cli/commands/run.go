package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/domain"
	"drivermatrix/internal/execution"
	"drivermatrix/internal/matrix"
	"drivermatrix/internal/notify"
	"drivermatrix/internal/parser"
	"drivermatrix/internal/patch"
	"drivermatrix/internal/storage"
	"drivermatrix/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	parser    *parser.GTestParser
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer

	// runner executes external processes; nil means the real runner
	runner   execution.CommandRunner
	now      func() time.Time
	progress func(total int) *ui.ProgressBar
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	parser *parser.GTestParser,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		scanner:   scanner,
		parser:    parser,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
		now:       time.Now,
		progress:  ui.NewProgressBar,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.config
	cfg.DriverDir = args[0]
	if len(args) > 1 {
		cfg.ServerInstallDir = args[1]
	}
	if abs, err := filepath.Abs(cfg.DriverDir); err == nil {
		cfg.DriverDir = abs
	}

	driverType, err := domain.LookupDriverType(cfg.DriverType)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	orchestrator := rc.newOrchestrator(driverType, logger)

	rc.formatter.PrintBanner(driverType.Name, cfg.Versions, cfg.GetVersionsRoot())

	plans, err := orchestrator.Plan(cfg.Versions)
	if err != nil {
		return err
	}

	var progress *ui.ProgressBar
	if !cfg.NoProgress {
		progress = rc.progress(len(plans))
		orchestrator.AddObserver(progress)
	}

	ctx := commandContext(cmd)

	started := rc.now()
	report, runErr := orchestrator.ExecutePlan(ctx, plans)
	duration := rc.now().Sub(started)
	if progress != nil {
		progress.Finish()
	}

	if report.Len() > 0 {
		rc.formatter.PrintReport(report)
		if err := rc.publish(ctx, report, started, duration, logger); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if report.Status() != 0 {
		if cfg.Flags.OpenFaills && rc.viewer != nil {
			if output, err := rc.storage.Load(); err == nil {
				if err := rc.viewer.View(output); err != nil {
					logger.Warn().Err(err).Msg("failed to open faills viewer")
				}
			}
		}
		return fmt.Errorf("%w: %d of %d version(s) failed", ErrMatrixFailed, len(report.FailedEntries()), report.Len())
	}
	return nil
}

func (rc *RunCommand) newOrchestrator(driverType domain.DriverType, logger zerolog.Logger) *matrix.Orchestrator {
	cfg := rc.config
	runner := rc.runner
	if runner == nil {
		runner = execution.NewRunner(logger)
	}

	ws := execution.NewWorkspace(cfg.DriverDir, runner)
	opts := matrix.Options{
		DriverType:     driverType,
		CheckoutPolicy: cfg.CheckoutPolicy,
		InstallDir:     cfg.ServerInstallDir,
		ServerVersion:  cfg.ServerVersion,
		CQLVersion:     cfg.CQLVersion,
		JUnitPath:      cfg.GetJUnitPath,
	}
	return matrix.New(
		opts,
		ws,
		discovery.NewResolver(cfg.GetVersionsRoot(), rc.scanner),
		patch.NewApplier(logger),
		execution.NewBuilder(runner, cfg.GetBuildDir()),
		execution.NewTestBinary(runner, cfg.GetTestBinaryPath()),
		rc.parser,
		logger,
	)
}

// publish saves the report and sends it to every configured destination.
// Only the JSON report is mandatory; the other destinations log failures.
func (rc *RunCommand) publish(ctx context.Context, report *domain.MatrixReport, started time.Time, duration time.Duration, logger zerolog.Logger) error {
	cfg := rc.config

	if err := rc.storage.Save(report, duration); err != nil {
		return fmt.Errorf("failed to save matrix results: %w", err)
	}

	if cfg.SummaryFile != "" {
		if err := storage.NewSummaryFile(cfg.SummaryFile).Append(report); err != nil {
			logger.Error().Err(err).Str("file", cfg.SummaryFile).Msg("failed to write summary file")
		}
	}

	if cfg.HistoryDSN != "" {
		if err := recordHistory(ctx, cfg.HistoryDSN, started, report); err != nil {
			logger.Error().Err(err).Msg("failed to record run history")
		}
	}

	if cfg.Mail.Enabled() {
		if err := notify.NewMailer(cfg.Mail).Send(report); err != nil {
			logger.Error().Err(err).Msg("failed to email matrix report")
		} else {
			logger.Info().Strs("to", cfg.Mail.To).Msg("matrix report emailed")
		}
	}
	return nil
}

func recordHistory(ctx context.Context, dsn string, started time.Time, report *domain.MatrixReport) error {
	store, err := storage.OpenHistoryStore(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.Record(ctx, runID(started), started, report)
}

// runID names a run after its start time
func runID(started time.Time) string {
	return started.UTC().Format("20060102-150405")
}
