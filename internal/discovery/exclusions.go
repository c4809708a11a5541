package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"drivermatrix/internal/execution"
)

// ExclusionSet is the ordered list of test patterns excluded from a run
type ExclusionSet struct {
	Tests []string `yaml:"tests"`
}

// Empty reports whether every test should run
func (e ExclusionSet) Empty() bool {
	return len(e.Tests) == 0
}

// Filter renders the set as a --gtest_filter expression
func (e ExclusionSet) Filter() string {
	return execution.GTestFilter(e.Tests)
}

// LoadExclusions reads the exclusion file of a configuration directory. A
// missing or empty file yields an empty set.
func LoadExclusions(dir ConfigDir) (ExclusionSet, error) {
	path := dir.ExclusionPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ExclusionSet{}, nil
		}
		return ExclusionSet{}, fmt.Errorf("read %s: %w", path, err)
	}

	var set ExclusionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return ExclusionSet{}, fmt.Errorf("parse %s: %w", path, err)
	}

	// Drop blank entries, keep order and duplicates as written
	tests := set.Tests[:0]
	for _, t := range set.Tests {
		if t = strings.TrimSpace(t); t != "" {
			tests = append(tests, t)
		}
	}
	set.Tests = tests
	return set, nil
}
