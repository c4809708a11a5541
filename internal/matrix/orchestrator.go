// Package matrix runs the integration tests of a driver against a list of
// versions, one version at a time, and aggregates their outcomes.
package matrix

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/domain"
	"drivermatrix/internal/execution"
	"drivermatrix/internal/patch"
)

// ErrCompileFailed stops the whole matrix: a broken toolchain would make
// every later version fail for reasons unrelated to the driver
var ErrCompileFailed = errors.New("compile failed")

// Resolver finds the configuration directory of a version
type Resolver interface {
	Resolve(tag string) (discovery.ConfigDir, error)
}

// Patcher applies the patch of a configuration directory
type Patcher interface {
	Apply(ctx context.Context, ws *execution.Workspace, dir string) (patch.Result, error)
}

// Compiler rebuilds the test binary
type Compiler interface {
	Compile(ctx context.Context, ws *execution.Workspace) error
}

// TestRunner runs the integration test binary
type TestRunner interface {
	Run(ctx context.Context, ws *execution.Workspace, inv execution.Invocation) (execution.Command, execution.ProcessResult)
}

// OutcomeParser turns the test binary result into an outcome
type OutcomeParser interface {
	ParseProcess(res execution.ProcessResult) domain.TestOutcome
}

// Observer is told about the progress of the matrix
type Observer interface {
	VersionStarted(version string, index, total int)
	VersionFinished(version string, outcome domain.TestOutcome)
}

// Options carries the run-wide settings of the pipeline
type Options struct {
	DriverType     domain.DriverType
	CheckoutPolicy config.CheckoutPolicy
	InstallDir     string
	ServerVersion  string
	// CQLVersion replaces the driver tag as --version when set
	CQLVersion string
	// JUnitPath returns the XML report path of a version, "" to disable
	JUnitPath func(version string) string
}

// Plan is the resolved configuration of one requested version
type Plan struct {
	Version    string
	Dir        discovery.ConfigDir
	Exclusions discovery.ExclusionSet
}

var _ execution.Executor = (*Orchestrator)(nil)

// Orchestrator sequences checkout, patch, compile, execute and parse for
// every version. It is not safe for concurrent use: all versions share the
// same workspace.
type Orchestrator struct {
	opts      Options
	workspace *execution.Workspace
	resolver  Resolver
	patcher   Patcher
	compiler  Compiler
	tests     TestRunner
	parser    OutcomeParser
	observers []Observer
	logger    zerolog.Logger
}

// New creates a new Orchestrator
func New(
	opts Options,
	ws *execution.Workspace,
	resolver Resolver,
	patcher Patcher,
	compiler Compiler,
	tests TestRunner,
	parser OutcomeParser,
	logger zerolog.Logger,
) *Orchestrator {
	if opts.CheckoutPolicy == "" {
		opts.CheckoutPolicy = config.CheckoutContinue
	}
	return &Orchestrator{
		opts:      opts,
		workspace: ws,
		resolver:  resolver,
		patcher:   patcher,
		compiler:  compiler,
		tests:     tests,
		parser:    parser,
		logger:    logger.With().Str("module", "matrix").Logger(),
	}
}

// AddObserver registers an observer
func (o *Orchestrator) AddObserver(obs Observer) {
	o.observers = append(o.observers, obs)
}

// Plan resolves every version and loads its exclusions. Repeated versions
// are tested once. Any configuration error fails the whole plan.
func (o *Orchestrator) Plan(versions []string) ([]Plan, error) {
	seen := make(map[string]bool)
	var plans []Plan
	for _, v := range versions {
		if seen[v] {
			o.logger.Warn().Str("version", v).Msg("version requested more than once, testing it once")
			continue
		}
		seen[v] = true

		dir, err := o.resolver.Resolve(v)
		if err != nil {
			return nil, fmt.Errorf("resolve configuration for %s: %w", v, err)
		}
		exclusions, err := discovery.LoadExclusions(dir)
		if err != nil {
			return nil, fmt.Errorf("load exclusions for %s: %w", v, err)
		}
		o.logger.Info().
			Str("version", v).
			Str("config", dir.Path).
			Int("excluded", len(exclusions.Tests)).
			Msg("configuration resolved")
		plans = append(plans, Plan{Version: v, Dir: dir, Exclusions: exclusions})
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no versions requested", discovery.ErrNoConfiguration)
	}
	return plans, nil
}

// Execute plans the versions and runs them in order. The report holds one
// entry per version processed. On a compile failure or cancellation the
// partial report is returned along with the error.
func (o *Orchestrator) Execute(ctx context.Context, versions []string) (*domain.MatrixReport, error) {
	report := domain.NewMatrixReport(o.opts.DriverType.Name)

	plans, err := o.Plan(versions)
	if err != nil {
		return report, err
	}
	return o.ExecutePlan(ctx, plans)
}

// ExecutePlan runs already resolved plans in order
func (o *Orchestrator) ExecutePlan(ctx context.Context, plans []Plan) (*domain.MatrixReport, error) {
	report := domain.NewMatrixReport(o.opts.DriverType.Name)

	for i, plan := range plans {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		for _, obs := range o.observers {
			obs.VersionStarted(plan.Version, i, len(plans))
		}

		outcome, err := o.runVersion(ctx, plan)
		report.Record(plan.Version, outcome)
		o.logOutcome(plan.Version, outcome, Recorded)
		for _, obs := range o.observers {
			obs.VersionFinished(plan.Version, outcome)
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// runVersion walks the state machine for one version. The returned error is
// set only when the matrix must stop.
func (o *Orchestrator) runVersion(ctx context.Context, plan Plan) (domain.TestOutcome, error) {
	log := o.logger.With().Str("version", plan.Version).Logger()
	state := NotStarted
	enter := func(next State) {
		log.Debug().Stringer("from", state).Stringer("to", next).Msg("state change")
		state = next
	}

	enter(Checkout)
	if err := o.checkout(ctx, plan.Version); err != nil {
		if o.opts.CheckoutPolicy == config.CheckoutAbort {
			enter(Aborted)
			log.Error().Err(err).Msg("checkout failed, skipping version")
			return domain.NewAnomaly(err.Error()), nil
		}
		log.Error().Err(err).Msg("checkout failed, continuing with the current working tree")
	}

	enter(Patch)
	result, err := o.patcher.Apply(ctx, o.workspace, plan.Dir.Path)
	if err != nil {
		enter(Aborted)
		log.Error().Err(err).Msg("failed to apply patch, skipping version")
		return domain.NewAnomaly(err.Error()), nil
	}

	if result.RequiresCompile() {
		enter(Compile)
		if err := o.compiler.Compile(ctx, o.workspace); err != nil {
			enter(Aborted)
			return domain.NewAnomaly(err.Error()), fmt.Errorf("%w for %s: %v", ErrCompileFailed, plan.Version, err)
		}
	} else {
		log.Info().Stringer("patch", result).Msg("source unchanged, skipping compilation")
	}

	enter(Execute)
	cmd, res := o.tests.Run(ctx, o.workspace, o.invocation(plan))
	log.Info().Msg(cmd.String())
	log.Debug().Str("stream", "stdout").Msg(res.Stdout)
	log.Debug().Str("stream", "stderr").Msg(res.Stderr)

	outcome := o.parser.ParseProcess(res)
	enter(Parsed)
	return outcome, nil
}

func (o *Orchestrator) checkout(ctx context.Context, version string) error {
	if err := o.workspace.Reset(ctx); err != nil {
		return err
	}
	return o.workspace.Checkout(ctx, o.opts.DriverType.Branch(version))
}

func (o *Orchestrator) invocation(plan Plan) execution.Invocation {
	inv := execution.Invocation{
		Version:       plan.Version,
		Category:      o.opts.DriverType.Category,
		Exclude:       plan.Exclusions.Tests,
		InstallDir:    o.opts.InstallDir,
		ServerVersion: o.opts.ServerVersion,
	}
	if o.opts.CQLVersion != "" {
		inv.Version = o.opts.CQLVersion
	}
	if o.opts.JUnitPath != nil {
		inv.JUnitPath = o.opts.JUnitPath(plan.Version)
	}
	return inv
}

func (o *Orchestrator) logOutcome(version string, outcome domain.TestOutcome, state State) {
	event := o.logger.Info()
	if !outcome.Succeeded() {
		event = o.logger.Warn()
	}
	event.
		Str("version", version).
		Int("planned", outcome.Planned).
		Int("ran", outcome.Ran).
		Int("passed", outcome.Passed).
		Int("failed", outcome.Failed).
		Strs("failed_tests", outcome.FailedTests).
		Int("exit_code", outcome.ExitCode).
		Bool("anomaly", outcome.IsAnomaly()).
		Stringer("state", state).
		Msg("version finished")
}
