package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog"
)

// Runner executes commands on the host
type Runner struct {
	logger zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger.With().Str("module", "execution").Logger()}
}

// Run executes the command and waits for it. There is no timeout: the
// process runs until it exits or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, c Command) ProcessResult {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)

	// Set environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, c.Env...)

	// Set working directory
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug().Str("dir", c.Dir).Strs("env", c.Env).Msgf("running %s", c)
	err := cmd.Run()

	result := ProcessResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitCode(exitErr)
		result.Err = err
	} else {
		result.ExitCode = -1
		result.Err = fmt.Errorf("start %s: %w", c.Name, err)
	}
	r.logger.Debug().Int("exit_code", result.ExitCode).Msgf("%s failed", c.Name)
	return result
}

// exitCode returns the exit status of a finished process. A process killed by
// a signal reports 128+signal, as a shell does, so it can never be mistaken
// for a process that did not start.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}
