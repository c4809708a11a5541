// Package executiontest provides a scripted execution.CommandRunner for tests.
package executiontest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"drivermatrix/internal/execution"
)

// Handler produces the result of a command
type Handler func(cmd execution.Command) execution.ProcessResult

// Runner records every command and answers from registered handlers. The
// first handler whose prefix matches the rendered command wins; unmatched
// commands succeed with empty output.
type Runner struct {
	mu       sync.Mutex
	handlers []route
	Commands []execution.Command
}

type route struct {
	prefix  string
	handler Handler
}

// NewRunner creates an empty scripted runner
func NewRunner() *Runner {
	return &Runner{}
}

// On registers a handler for commands whose rendered form starts with prefix
func (r *Runner) On(prefix string, h Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, route{prefix: prefix, handler: h})
	return r
}

// Run implements execution.CommandRunner
func (r *Runner) Run(_ context.Context, cmd execution.Command) execution.ProcessResult {
	r.mu.Lock()
	r.Commands = append(r.Commands, cmd)
	handlers := r.handlers
	r.mu.Unlock()

	rendered := cmd.String()
	for _, h := range handlers {
		if strings.HasPrefix(rendered, h.prefix) {
			return h.handler(cmd)
		}
	}
	return execution.ProcessResult{}
}

// Rendered returns the recorded commands as strings
func (r *Runner) Rendered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		out[i] = c.String()
	}
	return out
}

// Count returns how many recorded commands start with prefix
func (r *Runner) Count(prefix string) int {
	n := 0
	for _, c := range r.Rendered() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Output returns a handler answering with the given streams and exit code
func Output(stdout, stderr string, exitCode int) Handler {
	return func(execution.Command) execution.ProcessResult {
		res := execution.ProcessResult{Stdout: stdout, Stderr: stderr, ExitCode: exitCode}
		if exitCode != 0 {
			res.Err = fmt.Errorf("exit status %d", exitCode)
		}
		return res
	}
}

// Fail returns a handler answering with exit code 1 and the given stderr
func Fail(stderr string) Handler {
	return Output("", stderr, 1)
}
