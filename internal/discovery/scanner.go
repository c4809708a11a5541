package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"drivermatrix/internal/version"
)

// Scanner lists the configuration directories of a driver type
type Scanner struct{}

// NewScanner creates a new Scanner
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns every configuration directory under root. Numeric directories
// come first in ascending version order, followed by the others sorted by
// name. Hidden directories and plain files are skipped.
func (s *Scanner) Scan(root string) ([]ConfigDir, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("configuration root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("configuration root is not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read configuration root %s: %w", root, err)
	}

	var dirs []ConfigDir
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		dirs = append(dirs, ConfigDir{
			Name: name,
			Path: filepath.Join(root, name),
			Tag:  version.Parse(name),
		})
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		a, b := dirs[i].Tag, dirs[j].Tag
		if a.IsNumeric() != b.IsNumeric() {
			return a.IsNumeric()
		}
		if a.IsNumeric() {
			if c, _ := version.Compare(a, b); c != 0 {
				return c < 0
			}
		}
		return dirs[i].Name < dirs[j].Name
	})
	return dirs, nil
}

// FilterByName keeps the directories whose name matches a shell pattern
// ("2.1*", "master"). An empty pattern keeps everything.
func (s *Scanner) FilterByName(dirs []ConfigDir, pattern string) []ConfigDir {
	if pattern == "" {
		return dirs
	}

	var filtered []ConfigDir
	for _, d := range dirs {
		matched, err := filepath.Match(pattern, d.Name)
		if err == nil && matched {
			filtered = append(filtered, d)
			continue
		}
		// Without wildcards fall back to a substring match
		if !strings.ContainsAny(pattern, "*?[") && strings.Contains(d.Name, pattern) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
