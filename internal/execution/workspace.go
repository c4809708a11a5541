package execution

import (
	"context"
	"fmt"
	"path/filepath"
)

// Workspace is the single driver checkout shared by every version of a
// matrix. All stages receive it explicitly instead of relying on the process
// working directory.
type Workspace struct {
	dir    string
	runner CommandRunner
}

// NewWorkspace creates a Workspace rooted at the driver checkout
func NewWorkspace(dir string, runner CommandRunner) *Workspace {
	return &Workspace{dir: dir, runner: runner}
}

// Dir returns the root of the checkout
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins elem onto the checkout root
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

// Run executes a command inside the checkout
func (w *Workspace) Run(ctx context.Context, name string, args ...string) ProcessResult {
	return w.runner.Run(ctx, Command{Name: name, Args: args, Dir: w.dir})
}

// Reset discards local modifications, including patches applied for a
// previous version
func (w *Workspace) Reset(ctx context.Context) error {
	cmd := Command{Name: "git", Args: []string{"checkout", "."}, Dir: w.dir}
	if err := w.runner.Run(ctx, cmd).AsError(cmd); err != nil {
		return fmt.Errorf("reset workspace: %w", err)
	}
	return nil
}

// Checkout switches the checkout to ref
func (w *Workspace) Checkout(ctx context.Context, ref string) error {
	cmd := Command{Name: "git", Args: []string{"checkout", ref}, Dir: w.dir}
	if err := w.runner.Run(ctx, cmd).AsError(cmd); err != nil {
		return fmt.Errorf("checkout %s: %w", ref, err)
	}
	return nil
}
