package execution

import (
	"context"
	"fmt"
	"strings"
)

// Invocation describes one run of the integration test binary
type Invocation struct {
	Version       string   // Value for --version
	Category      string   // Value for --category
	Exclude       []string // Test patterns to filter out
	InstallDir    string   // Server installation directory, used when ServerVersion is empty
	ServerVersion string   // Relocatable server version, exported as SCYLLA_VERSION
	JUnitPath     string   // Optional XML report path
}

// GTestFilter renders the --gtest_filter value: everything, minus the
// excluded patterns
func GTestFilter(exclude []string) string {
	if len(exclude) == 0 {
		return "*"
	}
	return "*-" + strings.Join(exclude, ":")
}

// TestBinary runs the integration test binary
type TestBinary struct {
	runner CommandRunner
	path   string
}

// NewTestBinary creates a TestBinary for the binary at path
func NewTestBinary(runner CommandRunner, path string) *TestBinary {
	return &TestBinary{runner: runner, path: path}
}

// Command builds the command line for an invocation
func (t *TestBinary) Command(ws *Workspace, inv Invocation) Command {
	var args []string
	var env []string
	if inv.ServerVersion != "" {
		env = append(env, "SCYLLA_VERSION="+inv.ServerVersion)
	} else if inv.InstallDir != "" {
		args = append(args, "--install-dir="+inv.InstallDir)
	}
	args = append(args,
		"--version="+inv.Version,
		"--category="+inv.Category,
		"--verbose=ccm",
		"--gtest_filter="+GTestFilter(inv.Exclude),
	)
	if inv.JUnitPath != "" {
		args = append(args, fmt.Sprintf("--gtest_output=xml:%s", inv.JUnitPath))
	}
	return Command{Name: t.path, Args: args, Dir: ws.Dir(), Env: env}
}

// Run executes the binary and returns its result. A non-zero exit status is
// part of the result, not an error of the caller.
func (t *TestBinary) Run(ctx context.Context, ws *Workspace, inv Invocation) (Command, ProcessResult) {
	cmd := t.Command(ws, inv)
	return cmd, t.runner.Run(ctx, cmd)
}
