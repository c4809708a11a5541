// Package version turns driver release tags into values that can be ordered.
//
// A tag is either Numeric (a dotted tuple of non-negative integers such as
// "2.15.0") or Opaque (anything else, e.g. a branch name like "master").
// Only Numeric tags can be compared; Opaque tags are used for exact-name
// lookups.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrNotComparable is returned when an Opaque tag takes part in a comparison
var ErrNotComparable = errors.New("opaque version tag is not comparable")

// Kind distinguishes numeric tags from opaque names
type Kind int

const (
	// Opaque tags are plain names (branches, "master")
	Opaque Kind = iota
	// Numeric tags are dotted integer tuples
	Numeric
)

// String implements fmt.Stringer
func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "opaque"
}

// Tag is a parsed version tag. The zero value is an empty Opaque tag.
type Tag struct {
	raw        string
	kind       Kind
	components []int64
}

// Parse parses s into a Tag. It never fails: strings that are not dotted
// integer versions come back as Opaque tags.
//
// A purely numeric suffix after a dash ("2.15.2-1") is a post-release counter
// and becomes an extra trailing component. Any other pre-release or build
// metadata ("1.0.0-rc1", "1.0+dse") makes the tag Opaque.
func Parse(s string) Tag {
	raw := strings.TrimSpace(s)
	tag := Tag{raw: raw, kind: Opaque}

	v, err := goversion.NewVersion(raw)
	if err != nil {
		return tag
	}
	if v.Metadata() != "" {
		return tag
	}

	components := trimPadding(raw, v.Segments64())
	if pre := v.Prerelease(); pre != "" {
		post, err := strconv.ParseInt(pre, 10, 64)
		if err != nil || post < 0 {
			return tag
		}
		components = append(components, post)
	}

	tag.kind = Numeric
	tag.components = components
	return tag
}

// trimPadding drops the zero components go-version appends to short versions
// so that "2.0" keeps two components.
func trimPadding(raw string, segments []int64) []int64 {
	core := strings.TrimPrefix(raw, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	n := strings.Count(core, ".") + 1
	if n > len(segments) {
		n = len(segments)
	}
	out := make([]int64, n)
	copy(out, segments[:n])
	return out
}

// Kind returns whether the tag is Numeric or Opaque
func (t Tag) Kind() Kind {
	return t.kind
}

// IsNumeric reports whether t can be compared with other numeric tags
func (t Tag) IsNumeric() bool {
	return t.kind == Numeric
}

// String returns the tag as it was written
func (t Tag) String() string {
	return t.raw
}

// Components returns a copy of the numeric components. It is nil for Opaque tags.
func (t Tag) Components() []int64 {
	if t.kind != Numeric {
		return nil
	}
	out := make([]int64, len(t.components))
	copy(out, t.components)
	return out
}

// Compare orders two numeric tags position by position as integers, treating
// missing trailing components as zero. It returns -1, 0 or 1.
func Compare(a, b Tag) (int, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return 0, fmt.Errorf("compare %q with %q: %w", a.raw, b.raw, ErrNotComparable)
	}
	n := len(a.components)
	if len(b.components) > n {
		n = len(b.components)
	}
	for i := 0; i < n; i++ {
		x, y := component(a.components, i), component(b.components, i)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
	}
	return 0, nil
}

func component(c []int64, i int) int64 {
	if i < len(c) {
		return c[i]
	}
	return 0
}

// LessOrEqual reports whether t <= other. Opaque tags are never ordered, so
// the result is false whenever either side is Opaque.
func (t Tag) LessOrEqual(other Tag) bool {
	c, err := Compare(t, other)
	return err == nil && c <= 0
}

// Equal reports whether two tags denote the same version. Numeric tags are
// equal when they compare equal ("1.0" == "1.0.0"); Opaque tags are equal when
// their names match exactly.
func (t Tag) Equal(other Tag) bool {
	if t.IsNumeric() != other.IsNumeric() {
		return false
	}
	if !t.IsNumeric() {
		return t.raw == other.raw
	}
	c, _ := Compare(t, other)
	return c == 0
}
