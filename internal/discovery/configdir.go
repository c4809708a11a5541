package discovery

import (
	"path/filepath"

	"drivermatrix/internal/version"
)

const (
	// MasterDir is the fallback configuration for non-numeric tags
	MasterDir = "master"
	// ExclusionFile lists the tests to exclude for a version
	ExclusionFile = "ignore.yaml"
)

// ConfigDir is a per-version configuration directory
type ConfigDir struct {
	Name string      // Directory name, a version tag or a literal like "master"
	Path string      // Absolute or root-relative path to the directory
	Tag  version.Tag // Parsed directory name
}

// ExclusionPath returns the path of the exclusion file inside the directory
func (d ConfigDir) ExclusionPath() string {
	return filepath.Join(d.Path, ExclusionFile)
}

// String returns the directory path
func (d ConfigDir) String() string {
	return d.Path
}
