package discovery

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivermatrix/internal/version"
)

func TestResolver_Resolve(t *testing.T) {
	root := makeConfigRoot(t, "2.9.0/", "2.10.0/", "2.15.0/", "2.16.0/", "master/", "next/", "notes/")
	resolver := NewResolver(root, NewScanner())

	tests := []struct {
		requested string
		expected  string
	}{
		{requested: "2.16.0", expected: "2.16.0"},
		{requested: "2.16.2", expected: "2.16.0"},
		{requested: "2.15.9", expected: "2.15.0"},
		{requested: "2.10", expected: "2.10.0"},
		{requested: "2.9.5", expected: "2.9.0"},
		{requested: "3.0.0", expected: "2.16.0"},
		{requested: "2.15.2-1", expected: "2.15.0"},
		{requested: "master", expected: "master"},
		{requested: "next", expected: "next"},
		{requested: "some-branch", expected: "master"},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			dir, err := resolver.Resolve(tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dir.Name)
			assert.Equal(t, filepath.Join(root, tt.expected), dir.Path)
		})
	}
}

func TestResolver_LiteralNameWins(t *testing.T) {
	root := makeConfigRoot(t, "2.16.0/", "master/", "feature-x/")
	dir, err := NewResolver(root, NewScanner()).Resolve("feature-x")
	require.NoError(t, err)
	assert.Equal(t, "feature-x", dir.Name)
}

func TestResolver_NeverExceedsRequest(t *testing.T) {
	root := makeConfigRoot(t, "2.0.0/", "2.1.0/", "2.1.5/", "2.3/", "2.10.0/", "3.0.0/", "master/")
	resolver := NewResolver(root, NewScanner())

	for major := 2; major <= 3; major++ {
		for minor := 0; minor <= 12; minor++ {
			for patch := 0; patch <= 6; patch++ {
				requested := fmt.Sprintf("%d.%d.%d", major, minor, patch)
				dir, err := resolver.Resolve(requested)
				require.NoError(t, err, requested)
				c, err := version.Compare(dir.Tag, version.Parse(requested))
				require.NoError(t, err)
				assert.LessOrEqual(t, c, 0, "%s resolved to newer %s", requested, dir.Name)
			}
		}
	}
}

func TestResolver_NoEligibleDirectory(t *testing.T) {
	root := makeConfigRoot(t, "2.10.0/", "2.16.0/", "master/")
	_, err := NewResolver(root, NewScanner()).Resolve("2.9.9")
	require.ErrorIs(t, err, ErrNoConfiguration)
}

func TestResolver_NoNumericDirectories(t *testing.T) {
	root := makeConfigRoot(t, "master/")
	_, err := NewResolver(root, NewScanner()).Resolve("2.16.0")
	require.ErrorIs(t, err, ErrNoConfiguration)
}

func TestResolver_MissingMaster(t *testing.T) {
	root := makeConfigRoot(t, "2.16.0/")
	_, err := NewResolver(root, NewScanner()).Resolve("some-branch")
	require.ErrorIs(t, err, ErrNoConfiguration)
}

func TestResolver_MissingRoot(t *testing.T) {
	_, err := NewResolver("/non/existent/root", NewScanner()).Resolve("2.16.0")
	require.ErrorIs(t, err, ErrNoConfiguration)
}

func TestResolver_Ambiguous(t *testing.T) {
	root := makeConfigRoot(t, "2.16/", "2.16.0/", "master/")
	_, err := NewResolver(root, NewScanner()).Resolve("2.17.0")
	require.ErrorIs(t, err, ErrAmbiguousConfiguration)
}

func TestResolver_Memoizes(t *testing.T) {
	root := makeConfigRoot(t, "2.15.0/", "master/")
	resolver := NewResolver(root, NewScanner())

	first, err := resolver.Resolve("2.16.0")
	require.NoError(t, err)
	assert.Equal(t, "2.15.0", first.Name)

	// A directory added later does not change the answer for the same tag
	makeDir(t, filepath.Join(root, "2.16.0"))
	second, err := resolver.Resolve("2.16.0")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
