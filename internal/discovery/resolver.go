package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"drivermatrix/internal/version"
)

var (
	// ErrNoConfiguration means no configuration directory can serve a version
	ErrNoConfiguration = errors.New("no configuration directory")
	// ErrAmbiguousConfiguration means two directory names denote the same version
	ErrAmbiguousConfiguration = errors.New("ambiguous configuration directories")
)

// Resolver maps requested version tags to configuration directories
type Resolver struct {
	root    string
	scanner *Scanner
	cache   map[string]ConfigDir
}

// NewResolver creates a Resolver over the configuration root of one driver type
func NewResolver(root string, scanner *Scanner) *Resolver {
	return &Resolver{
		root:    root,
		scanner: scanner,
		cache:   make(map[string]ConfigDir),
	}
}

// Root returns the configuration root the resolver searches
func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the configuration directory for a requested tag.
//
// A non-numeric tag resolves to the directory with exactly that name, or to
// "master". A numeric tag resolves to the directory with the greatest version
// not exceeding it. The answer for a tag is computed once.
func (r *Resolver) Resolve(tag string) (ConfigDir, error) {
	if dir, ok := r.cache[tag]; ok {
		return dir, nil
	}

	requested := version.Parse(tag)
	var (
		dir ConfigDir
		err error
	)
	if requested.IsNumeric() {
		dir, err = r.resolveNumeric(requested)
	} else {
		dir, err = r.resolveLiteral(requested)
	}
	if err != nil {
		return ConfigDir{}, err
	}

	r.cache[tag] = dir
	return dir, nil
}

func (r *Resolver) resolveLiteral(requested version.Tag) (ConfigDir, error) {
	for _, name := range []string{requested.String(), MasterDir} {
		if name == "" {
			continue
		}
		path := filepath.Join(r.root, name)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return ConfigDir{Name: name, Path: path, Tag: version.Parse(name)}, nil
		}
	}
	return ConfigDir{}, fmt.Errorf("%w for %q in %s (no %q directory either)",
		ErrNoConfiguration, requested.String(), r.root, MasterDir)
}

func (r *Resolver) resolveNumeric(requested version.Tag) (ConfigDir, error) {
	dirs, err := r.scanner.Scan(r.root)
	if err != nil {
		return ConfigDir{}, fmt.Errorf("%w for %q: %v", ErrNoConfiguration, requested.String(), err)
	}

	var candidates []ConfigDir
	for _, d := range dirs {
		if d.Tag.IsNumeric() {
			candidates = append(candidates, d)
		}
	}
	// Scan returns numeric directories in ascending order, so equal tags are neighbours
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Tag.Equal(candidates[i-1].Tag) {
			return ConfigDir{}, fmt.Errorf("%w: %q and %q in %s",
				ErrAmbiguousConfiguration, candidates[i-1].Name, candidates[i].Name, r.root)
		}
	}

	var best *ConfigDir
	for i := range candidates {
		if candidates[i].Tag.LessOrEqual(requested) {
			best = &candidates[i]
		}
	}
	if best == nil {
		return ConfigDir{}, fmt.Errorf("%w for %q in %s: every defined version is newer",
			ErrNoConfiguration, requested.String(), r.root)
	}
	return *best, nil
}
