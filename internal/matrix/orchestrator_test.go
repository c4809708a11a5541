package matrix

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivermatrix/internal/config"
	"drivermatrix/internal/discovery"
	"drivermatrix/internal/domain"
	"drivermatrix/internal/execution"
	"drivermatrix/internal/execution/executiontest"
	"drivermatrix/internal/parser"
	"drivermatrix/internal/patch"
)

const (
	driverDir = "/src/cpp-driver"
	testBin   = "/src/cpp-driver/build/cassandra-integration-tests"
)

func passingRun(n int) string {
	return strings.Join([]string{
		"[==========] Running " + strconv.Itoa(n) + " tests from 2 test cases.",
		"[==========] " + strconv.Itoa(n) + " tests from 2 test cases ran. (812 ms total)",
		"[  PASSED  ] " + strconv.Itoa(n) + " tests.",
	}, "\n")
}

type fixture struct {
	root     string
	runner   *executiontest.Runner
	observer *recordingObserver
	opts     Options
}

// newFixture lays out a scylla configuration root. Each entry is a path
// relative to the root; entries ending in "/" are directories, others are
// files written with the content after "=".
func newFixture(t *testing.T, entries ...string) *fixture {
	t.Helper()
	root := t.TempDir()
	for _, entry := range entries {
		name, content, _ := strings.Cut(entry, "=")
		full := filepath.Join(root, name)
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(full, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	scylla, err := domain.LookupDriverType("scylla")
	require.NoError(t, err)

	return &fixture{
		root:     root,
		runner:   executiontest.NewRunner(),
		observer: &recordingObserver{},
		opts: Options{
			DriverType: scylla,
			InstallDir: "/opt/scylla",
		},
	}
}

func (f *fixture) orchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	ws := execution.NewWorkspace(driverDir, f.runner)
	o := New(
		f.opts,
		ws,
		discovery.NewResolver(f.root, discovery.NewScanner()),
		patch.NewApplier(zerolog.Nop()),
		execution.NewBuilder(f.runner, t.TempDir()),
		execution.NewTestBinary(f.runner, testBin),
		parser.NewGTestParser(),
		zerolog.Nop(),
	)
	o.AddObserver(f.observer)
	return o
}

type recordingObserver struct {
	started  []string
	finished []string
	totals   []int
}

func (r *recordingObserver) VersionStarted(version string, index, total int) {
	r.started = append(r.started, version)
	r.totals = append(r.totals, total)
}

func (r *recordingObserver) VersionFinished(version string, outcome domain.TestOutcome) {
	r.finished = append(r.finished, version)
}

func TestExecute_EmptyPatchAndMasterFallback(t *testing.T) {
	f := newFixture(t,
		"2.16.0/patch=",
		"2.16.0/ignore.yaml=tests:\n  - SslTests.*\n",
		"master/",
	)
	f.runner.On(testBin, executiontest.Output(passingRun(12), "", 0))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.1", "feature-x"})
	require.NoError(t, err)

	require.Equal(t, []string{"2.16.1", "feature-x"}, report.Versions())
	for _, v := range report.Versions() {
		outcome, _ := report.Get(v)
		assert.True(t, outcome.Succeeded(), v)
		assert.Equal(t, 12, outcome.Ran)
	}
	assert.Equal(t, 0, report.Status())

	// Neither version changed the source, so nothing was compiled or patched
	assert.Equal(t, 0, f.runner.Count("cmake"))
	assert.Equal(t, 0, f.runner.Count("make"))
	assert.Equal(t, 0, f.runner.Count("patch"))

	assert.Equal(t, []string{
		"git checkout .",
		"git checkout 2.16.1",
		testBin + " --install-dir=/opt/scylla --version=2.16.1 --category=CASSANDRA --verbose=ccm --gtest_filter=*-SslTests.*",
		"git checkout .",
		"git checkout feature-x",
		testBin + " --install-dir=/opt/scylla --version=feature-x --category=CASSANDRA --verbose=ccm --gtest_filter=*",
	}, f.runner.Rendered())
	assert.Equal(t, []string{"2.16.1", "feature-x"}, f.observer.finished)
}

func TestExecute_FailingVersionMakesStatusNonZero(t *testing.T) {
	f := newFixture(t, "2.16.0/", "master/")
	failing := strings.Join([]string{
		"[==========] Running 12 tests from 3 test cases.",
		"[==========] 12 tests from 3 test cases ran.",
		"[  PASSED  ] 10 tests.",
		"[  FAILED  ] 2 tests, listed below:",
		"[  FAILED  ] Suite.testX",
		"[  FAILED  ] Suite.testY",
	}, "\n")
	f.runner.
		On(testBin+" --install-dir=/opt/scylla --version=2.16.0", executiontest.Output(failing, "", 1)).
		On(testBin, executiontest.Output(passingRun(12), "", 0))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.0", "master"})
	require.NoError(t, err)

	failed, _ := report.Get("2.16.0")
	assert.Equal(t, []string{"Suite.testX", "Suite.testY"}, failed.FailedTests)
	passed, _ := report.Get("master")
	assert.True(t, passed.Succeeded())
	assert.Equal(t, 1, report.Status())
}

func TestExecute_PatchAppliedTriggersCompile(t *testing.T) {
	f := newFixture(t, "2.16.0/patch=--- a/src/x.cpp\n+++ b/src/x.cpp\n")
	f.runner.On(testBin, executiontest.Output(passingRun(5), "", 0))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.0"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Status())

	rendered := f.runner.Rendered()
	require.Len(t, rendered, 6)
	assert.True(t, strings.HasPrefix(rendered[2], "patch -p1"))
	assert.True(t, strings.HasPrefix(rendered[3], "cmake "))
	assert.Equal(t, "make", rendered[4])
	assert.True(t, strings.HasPrefix(rendered[5], testBin))
}

func TestExecute_PatchFailureIsAnAnomaly(t *testing.T) {
	f := newFixture(t, "2.15.0/patch=broken", "2.16.0/", "master/")
	f.runner.
		On("patch", executiontest.Output("Hunk #1 FAILED at 3.", "", 1)).
		On(testBin, executiontest.Output(passingRun(12), "", 0))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.15.1", "2.16.0"})
	require.NoError(t, err)

	anomaly, ok := report.Get("2.15.1")
	require.True(t, ok)
	assert.True(t, anomaly.IsAnomaly())
	assert.Contains(t, anomaly.Error, "Hunk #1 FAILED")

	next, _ := report.Get("2.16.0")
	assert.True(t, next.Succeeded())
	assert.Equal(t, 1, report.Status())
	assert.Equal(t, 1, f.runner.Count(testBin))
	assert.Equal(t, 0, f.runner.Count("cmake"))
}

func TestExecute_AlreadyAppliedPatchStillCompiles(t *testing.T) {
	f := newFixture(t, "2.16.0/patch=diff")
	f.runner.
		On("patch", executiontest.Output("Reversed (or previously applied) patch detected!  Skipping patch.", "", 1)).
		On(testBin, executiontest.Output(passingRun(3), "", 0))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.0"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Status())
	assert.Equal(t, 1, f.runner.Count("cmake"))
}

func TestExecute_CheckoutFailurePolicy(t *testing.T) {
	t.Run("continue", func(t *testing.T) {
		f := newFixture(t, "2.16.0/")
		f.runner.
			On("git checkout 2.16.5", executiontest.Fail("pathspec did not match")).
			On(testBin, executiontest.Output(passingRun(4), "", 0))

		report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.5"})
		require.NoError(t, err)
		outcome, _ := report.Get("2.16.5")
		assert.True(t, outcome.Succeeded())
		assert.Equal(t, 1, f.runner.Count(testBin))
	})

	t.Run("abort", func(t *testing.T) {
		f := newFixture(t, "2.16.0/")
		f.opts.CheckoutPolicy = config.CheckoutAbort
		f.runner.
			On("git checkout 2.16.5", executiontest.Fail("pathspec did not match")).
			On(testBin, executiontest.Output(passingRun(4), "", 0))

		report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.5", "2.16.0"})
		require.NoError(t, err)
		outcome, _ := report.Get("2.16.5")
		assert.True(t, outcome.IsAnomaly())
		next, _ := report.Get("2.16.0")
		assert.True(t, next.Succeeded())
		assert.Equal(t, 1, f.runner.Count(testBin))
	})
}

func TestExecute_CompileFailureStopsMatrix(t *testing.T) {
	f := newFixture(t, "2.15.0/patch=diff", "2.16.0/")
	f.runner.On("make", executiontest.Fail("error: ‘foo’ was not declared"))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.15.0", "2.16.0"})
	require.ErrorIs(t, err, ErrCompileFailed)

	require.Equal(t, []string{"2.15.0"}, report.Versions())
	outcome, _ := report.Get("2.15.0")
	assert.True(t, outcome.IsAnomaly())
	assert.Equal(t, 0, f.runner.Count(testBin))
	assert.Equal(t, 0, f.runner.Count("git checkout 2.16.0"))
}

func TestExecute_ConfigurationErrorRunsNothing(t *testing.T) {
	f := newFixture(t, "2.16.0/", "master/")

	_, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.0", "2.9.0"})
	require.ErrorIs(t, err, discovery.ErrNoConfiguration)
	assert.Empty(t, f.runner.Commands)
}

func TestExecute_TestBinaryCrashIsRecorded(t *testing.T) {
	f := newFixture(t, "2.16.0/")
	f.runner.On(testBin, executiontest.Output("[==========] Running 12 tests from 3 test cases.\n", "Segmentation fault", 139))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.0"})
	require.NoError(t, err)

	outcome, _ := report.Get("2.16.0")
	assert.Equal(t, 139, outcome.ExitCode)
	assert.Equal(t, 12, outcome.Planned)
	assert.Equal(t, "Segmentation fault", outcome.Error)
	assert.False(t, outcome.IsAnomaly())
	assert.Equal(t, 1, report.Status())
}

func TestExecute_DuplicateVersionsRunOnce(t *testing.T) {
	f := newFixture(t, "2.16.0/")
	f.runner.On(testBin, executiontest.Output(passingRun(2), "", 0))

	report, err := f.orchestrator(t).Execute(context.Background(), []string{"2.16.0", "2.16.0"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Len())
	assert.Equal(t, 1, f.runner.Count(testBin))
	assert.Equal(t, []int{1}, f.observer.totals)
}

func TestExecute_InvocationCapabilities(t *testing.T) {
	f := newFixture(t, "2.16.0/")
	datastax, err := domain.LookupDriverType("datastax")
	require.NoError(t, err)
	f.opts.DriverType = datastax
	f.opts.ServerVersion = "5.4.0"
	f.opts.CQLVersion = "3.11.4"
	f.opts.JUnitPath = func(v string) string { return "/reports/" + v + ".xml" }
	f.runner.On(testBin, executiontest.Output(passingRun(2), "", 0))

	_, err = f.orchestrator(t).Execute(context.Background(), []string{"2.16.0"})
	require.NoError(t, err)

	rendered := f.runner.Rendered()
	assert.Equal(t, "git checkout 2.16.0-dse", rendered[1])
	assert.Equal(t, testBin+" --version=3.11.4 --category=DSE --verbose=ccm --gtest_filter=* --gtest_output=xml:/reports/2.16.0.xml", rendered[2])
	assert.Equal(t, []string{"SCYLLA_VERSION=5.4.0"}, f.runner.Commands[2].Env)
}

func TestPlan_ThenExecutePlan(t *testing.T) {
	f := newFixture(t, "2.16.0/", "master/")
	f.runner.On(testBin, executiontest.Output(passingRun(2), "", 0))
	o := f.orchestrator(t)

	plans, err := o.Plan([]string{"master", "2.16.3", "master"})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "2.16.0", plans[1].Dir.Name)
	assert.Empty(t, f.runner.Commands)

	report, err := o.ExecutePlan(context.Background(), plans)
	require.NoError(t, err)
	assert.Equal(t, []string{"master", "2.16.3"}, report.Versions())
	assert.Equal(t, []int{2, 2}, f.observer.totals)
}

func TestExecute_CancelledContext(t *testing.T) {
	f := newFixture(t, "2.16.0/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.orchestrator(t).Execute(ctx, []string{"2.16.0"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Len())
	assert.Empty(t, f.runner.Commands)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "compile", Compile.String())
	assert.True(t, Aborted.Terminal())
	assert.False(t, Execute.Terminal())
	assert.Equal(t, "State(42)", State(42).String())
}
