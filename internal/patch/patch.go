// Package patch applies the version-specific source patch of a configuration
// directory to the driver checkout.
package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"drivermatrix/internal/execution"
)

// FilePrefix starts the name of every patch artifact ("patch", "patch-01.diff")
const FilePrefix = "patch"

// ErrPatchFailed is returned when no patch artifact could be applied
var ErrPatchFailed = errors.New("patch failed")

// Result tells how the patch step ended
type Result int

const (
	// NoPatch means the directory has no patch artifact
	NoPatch Result = iota
	// EmptyPatch means every patch artifact is zero-length
	EmptyPatch
	// Applied means a patch applied cleanly
	Applied
	// AlreadyApplied means the tree already carried the patch
	AlreadyApplied
)

// String implements fmt.Stringer
func (r Result) String() string {
	switch r {
	case NoPatch:
		return "no patch"
	case EmptyPatch:
		return "empty patch"
	case Applied:
		return "applied"
	case AlreadyApplied:
		return "already applied"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// RequiresCompile reports whether the source tree changed and the test
// binary must be rebuilt
func (r Result) RequiresCompile() bool {
	return r == Applied || r == AlreadyApplied
}

// Artifact is a patch file found in a configuration directory
type Artifact struct {
	Path string
	Size int64
}

// Artifacts lists the patch files of a configuration directory in name order
func Artifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), FilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		artifacts = append(artifacts, Artifact{Path: filepath.Join(dir, entry.Name()), Size: info.Size()})
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })
	return artifacts, nil
}

// Applier applies patch artifacts with the patch(1) tool
type Applier struct {
	logger zerolog.Logger
}

// NewApplier creates a new Applier
func NewApplier(logger zerolog.Logger) *Applier {
	return &Applier{logger: logger.With().Str("module", "patch").Logger()}
}

// Apply applies the patch of configuration directory dir to the workspace.
// Artifacts are tried in order until one applies cleanly or turns out to be
// applied already. When every artifact fails the error wraps ErrPatchFailed.
func (a *Applier) Apply(ctx context.Context, ws *execution.Workspace, dir string) (Result, error) {
	artifacts, err := Artifacts(dir)
	if err != nil {
		return NoPatch, fmt.Errorf("%w: %v", ErrPatchFailed, err)
	}
	if len(artifacts) == 0 {
		a.logger.Info().Str("dir", dir).Msg("no patch found, skipping")
		return NoPatch, nil
	}

	var failures []string
	nonEmpty := 0
	for _, artifact := range artifacts {
		if artifact.Size == 0 {
			a.logger.Info().Str("patch", artifact.Path).Msg("patch file is empty, skipping")
			continue
		}
		nonEmpty++

		res := ws.Run(ctx, "patch", "-p1", "--forward", "--batch", "-i", artifact.Path)
		switch {
		case res.Success():
			a.logger.Info().Str("patch", artifact.Path).Msg("patch applied")
			return Applied, nil
		case alreadyApplied(res.Combined()):
			a.logger.Info().Str("patch", artifact.Path).Msg("patch was already applied")
			return AlreadyApplied, nil
		default:
			a.logger.Warn().Str("patch", artifact.Path).Int("exit_code", res.ExitCode).Msg("patch did not apply")
			failures = append(failures, fmt.Sprintf("%s: %s", filepath.Base(artifact.Path), strings.TrimSpace(res.Combined())))
		}
	}

	if nonEmpty == 0 {
		return EmptyPatch, nil
	}
	return NoPatch, fmt.Errorf("%w in %s: %s", ErrPatchFailed, dir, strings.Join(failures, "; "))
}

// alreadyApplied recognises the message patch(1) prints when the tree already
// contains the changes. This depends on the exact wording of GNU patch.
func alreadyApplied(output string) bool {
	return strings.Contains(output, "Reversed (or previously applied) patch detected")
}
