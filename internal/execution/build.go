package execution

import (
	"context"
	"fmt"
	"os"
)

// Builder compiles the integration test binary inside a workspace
type Builder struct {
	runner   CommandRunner
	buildDir string
}

// NewBuilder creates a new Builder writing into buildDir
func NewBuilder(runner CommandRunner, buildDir string) *Builder {
	return &Builder{runner: runner, buildDir: buildDir}
}

// Compile configures the build with integration tests enabled and runs make
func (b *Builder) Compile(ctx context.Context, ws *Workspace) error {
	if err := os.MkdirAll(b.buildDir, 0755); err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}

	steps := []Command{
		{Name: "cmake", Args: []string{"-DCASS_BUILD_INTEGRATION_TESTS=ON", ws.Dir()}, Dir: b.buildDir},
		{Name: "make", Dir: b.buildDir},
	}

	for _, step := range steps {
		if err := b.runner.Run(ctx, step).AsError(step); err != nil {
			return fmt.Errorf("compile: %w", err)
		}
	}
	return nil
}
