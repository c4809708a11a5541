package execution

import (
	"context"
	"fmt"
	"strings"
)

// Command is an external process invocation
type Command struct {
	Name string   // Executable
	Args []string // Arguments, not shell-interpreted
	Dir  string   // Working directory
	Env  []string // Extra KEY=VALUE pairs on top of the current environment
}

// String renders the command for logs
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// ProcessResult is what an external process left behind
type ProcessResult struct {
	Stdout   string
	Stderr   string
	ExitCode int   // -1 when the process could not be started
	Err      error // Non-nil when the process failed to start or exited non-zero
}

// Success reports whether the process ran and exited with status 0
func (r ProcessResult) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Combined returns stdout followed by stderr
func (r ProcessResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// AsError converts a failed result into an error carrying the tail of its output
func (r ProcessResult) AsError(cmd Command) error {
	if r.Success() {
		return nil
	}
	out := strings.TrimSpace(r.Combined())
	if len(out) > 2000 {
		out = "..." + out[len(out)-2000:]
	}
	if out == "" {
		return fmt.Errorf("%s: %w", cmd, r.Err)
	}
	return fmt.Errorf("%s: %w: %s", cmd, r.Err, out)
}

// CommandRunner runs external processes
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) ProcessResult
}
