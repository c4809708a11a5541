package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivermatrix/internal/cli"
	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/domain"
	"drivermatrix/internal/execution/executiontest"
	"drivermatrix/internal/parser"
	"drivermatrix/internal/storage"
	"drivermatrix/internal/ui"
)

func init() {
	color.NoColor = true
}

const passingOutput = `[==========] Running 12 tests from 3 test cases.
[==========] 12 tests from 3 test cases ran. (812 ms total)
[  PASSED  ] 12 tests.
`

const failingOutput = `[==========] Running 12 tests from 3 test cases.
[==========] 12 tests from 3 test cases ran. (812 ms total)
[  PASSED  ] 10 tests.
[  FAILED  ] 2 tests, listed below:
[  FAILED  ] Suite.testX
[  FAILED  ] Suite.testY
`

type env struct {
	cfg       *config.Config
	driverDir string
	out       *bytes.Buffer
	runner    *executiontest.Runner
}

// newEnv creates a scylla configuration root with the given directories and
// files (name=content)
func newEnv(t *testing.T, entries ...string) *env {
	t.Helper()
	t.Setenv("SCYLLA_VERSION", "")
	t.Setenv("CQL_CASSANDRA_VERSION", "")
	t.Setenv("DRIVERMATRIX_VERSIONS_ROOT", "")
	t.Setenv("DRIVERMATRIX_HISTORY_DSN", "")
	t.Setenv("SMTP_HOST", "")

	versionsRoot := t.TempDir()
	for _, entry := range entries {
		name, content, isFile := strings.Cut(entry, "=")
		full := filepath.Join(versionsRoot, "scylla", name)
		if !isFile {
			require.NoError(t, os.MkdirAll(full, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	cfg := config.New()
	require.NoError(t, cfg.Apply(config.Flags{
		VersionsRoot: versionsRoot,
		EnvFile:      filepath.Join(t.TempDir(), "missing.env"),
		LogLevel:     "error",
		NoProgress:   true,
	}))
	cfg.OutputJSONDir = filepath.Join(t.TempDir(), "storage")

	return &env{
		cfg:       cfg,
		driverDir: t.TempDir(),
		out:       &bytes.Buffer{},
		runner:    executiontest.NewRunner(),
	}
}

func (e *env) runCommand() *RunCommand {
	formatter := ui.NewFormatter(e.out)
	rc := NewRunCommand(e.cfg, discovery.NewScanner(), parser.NewGTestParser(), storage.NewJSONStorage(e.cfg), formatter, nil)
	rc.runner = e.runner
	return rc
}

func (e *env) testBinary() string {
	return filepath.Join(e.driverDir, "build", "cassandra-integration-tests")
}

func TestRunCommand_AllVersionsPass(t *testing.T) {
	e := newEnv(t, "2.16.0/patch=", "2.16.0/ignore.yaml=tests:\n  - SslTests.*\n", "master")
	e.cfg.Versions = []string{"2.16.1", "feature-x"}
	e.cfg.SummaryFile = filepath.Join(t.TempDir(), "summary.txt")
	e.runner.On(e.testBinary(), executiontest.Output(passingOutput, "", 0))

	err := e.runCommand().Execute(&cobra.Command{}, []string{e.driverDir})
	require.NoError(t, err)

	assert.Equal(t, 0, e.runner.Count("cmake"))
	assert.Equal(t, 2, e.runner.Count(e.testBinary()))
	assert.Contains(t, e.out.String(), "All 2 version(s) passed!")

	saved, err := storage.NewJSONStorage(e.cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Meta.Status)
	assert.Equal(t, []string{"2.16.1", "feature-x"}, saved.Report().Versions())

	summary, err := os.ReadFile(e.cfg.SummaryFile)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "SCYLLA CPP DRIVER VERSION 2.16.1\nRunning tests: 12\n")
	assert.Contains(t, string(summary), "SCYLLA CPP DRIVER VERSION feature-x\nRunning tests: 12\n")
}

func TestRunCommand_FailingVersion(t *testing.T) {
	e := newEnv(t, "master")
	e.runner.On(e.testBinary(), executiontest.Output(failingOutput, "", 1))

	err := e.runCommand().Execute(&cobra.Command{}, []string{e.driverDir, "/opt/scylla"})
	require.ErrorIs(t, err, ErrMatrixFailed)

	assert.Contains(t, e.runner.Rendered()[2], "--install-dir=/opt/scylla")

	saved, err := storage.NewJSONStorage(e.cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Meta.Status)
	require.Len(t, saved.Failures, 2)
	assert.Equal(t, "Suite.testX", saved.Failures[0].TestName)
}

func TestRunCommand_ConfigurationError(t *testing.T) {
	e := newEnv(t, "2.16.0")
	e.cfg.Versions = []string{"2.16.0", "1.0.0"}

	err := e.runCommand().Execute(&cobra.Command{}, []string{e.driverDir})
	require.ErrorIs(t, err, discovery.ErrNoConfiguration)
	assert.Empty(t, e.runner.Commands)

	_, err = os.Stat(e.cfg.GetOutputPath())
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_UnknownDriverType(t *testing.T) {
	e := newEnv(t, "master")
	e.cfg.DriverType = "python"

	err := e.runCommand().Execute(&cobra.Command{}, []string{e.driverDir})
	require.Error(t, err)
	assert.Empty(t, e.runner.Commands)
}

func TestRunCommand_ProgressCountsDistinctVersions(t *testing.T) {
	e := newEnv(t, "master")
	e.cfg.NoProgress = false
	e.cfg.Versions = []string{"master", "feature-x", "master"}
	e.runner.On(e.testBinary(), executiontest.Output(passingOutput, "", 0))

	rc := e.runCommand()
	var total int
	var bar *ui.ProgressBar
	rc.progress = func(n int) *ui.ProgressBar {
		total = n
		bar = ui.NewProgressBar(n)
		return bar
	}

	require.NoError(t, rc.Execute(&cobra.Command{}, []string{e.driverDir}))
	assert.Equal(t, 2, total)
	passed, failed := bar.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 0, failed)
}

func TestResolveCommand(t *testing.T) {
	e := newEnv(t, "2.15.0", "2.16.0", "master")
	rc := NewResolveCommand(e.cfg, discovery.NewScanner(), ui.NewFormatter(e.out))

	require.NoError(t, rc.Execute(&cobra.Command{}, []string{"2.16.3", "next"}))
	out := e.out.String()
	assert.Contains(t, out, filepath.Join("scylla", "2.16.0"))
	assert.Contains(t, out, filepath.Join("scylla", "master"))

	err := rc.Execute(&cobra.Command{}, []string{"1.0.0"})
	assert.ErrorIs(t, err, discovery.ErrNoConfiguration)
}

func TestListCommand(t *testing.T) {
	e := newEnv(t, "2.16.0/patch=diff", "2.16.0/ignore.yaml=tests:\n  - A.*\n  - B.*\n", "2.9.0", "master")
	lc := NewListCommand(e.cfg, discovery.NewScanner(), ui.NewFormatter(e.out))

	require.NoError(t, lc.Execute(&cobra.Command{}, nil))
	out := e.out.String()
	assert.Contains(t, out, "Found 3 configuration(s)")
	assert.Contains(t, out, "2.16.0 (numeric, 1 patch file(s), 2 excluded test(s))")
	assert.Less(t, strings.Index(out, "2.9.0"), strings.Index(out, "2.16.0"))

	e.out.Reset()
	e.cfg.Flags.NameFilter = "2.1*"
	require.NoError(t, lc.Execute(&cobra.Command{}, nil))
	assert.Contains(t, e.out.String(), "Found 1 configuration(s)")
}

func TestFaillsCommand_NonInteractive(t *testing.T) {
	e := newEnv(t)
	st := storage.NewJSONStorage(e.cfg)

	report := domain.NewMatrixReport("scylla")
	report.Record("master", domain.TestOutcome{Planned: 2, Ran: 2, Passed: 1, Failed: 1, FailedTests: []string{"Suite.testX"}, ExitCode: 1})
	require.NoError(t, st.Save(report, 0))

	fc := NewFaillsCommand(e.cfg, st, nil, ui.NewFormatter(e.out))
	fc.interactive = func() bool { return false }

	require.NoError(t, fc.Execute(&cobra.Command{}, nil))
	assert.Contains(t, e.out.String(), "└── master")
	assert.Contains(t, e.out.String(), "Suite.testX")
}

func TestHistoryCommand_RequiresDSN(t *testing.T) {
	e := newEnv(t)
	err := NewHistoryCommand(e.cfg, ui.NewFormatter(e.out)).Execute(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "history-dsn")
}

func TestRegister_ParsesFlags(t *testing.T) {
	e := newEnv(t, "master")
	cmds := NewCommands(e.cfg)
	root := &cobra.Command{Use: "drivermatrix"}

	cliFlags := &cli.Flags{}
	cmds.Register(root, cliFlags, e.cfg)

	runCmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, runCmd.ParseFlags([]string{"--versions", "2.16.0,master", "--scylla-version", "5.4.0", "--on-checkout-failure", "abort"}))
	require.NoError(t, runCmd.PreRunE(runCmd, nil))

	assert.Equal(t, []string{"2.16.0", "master"}, e.cfg.Versions)
	assert.Equal(t, "5.4.0", e.cfg.ServerVersion)
	assert.Equal(t, config.CheckoutAbort, e.cfg.CheckoutPolicy)

	for _, name := range []string{"resolve", "list", "faills", "history"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
