package cksetup

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a three-component major.minor.patch version with total ordering.
//
// Absent versions are expressed with a nil *Version: an unknown installed
// version (fresh install) or an unbounded script version (always applied).
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// NewVersion returns a pointer to a Version built from its components.
func NewVersion(major, minor, patch uint64) *Version {
	return &Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses "X.Y.Z" where each component is a non-negative integer.
func ParseVersion(s string) (*Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected X.Y.Z, got %q: %w", s, ErrInvalidVersion)
	}

	var components [3]uint64
	for i, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return nil, fmt.Errorf("invalid version component %q in %q: %w", part, s, ErrInvalidVersion)
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q in %q: %w", part, s, ErrInvalidVersion)
		}
		components[i] = n
	}

	return NewVersion(components[0], components[1], components[2]), nil
}

// MustParseVersion is like ParseVersion but panics on error.
// Intended for constants and tests.
func MustParseVersion(s string) *Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v is lower than, equal to
// or greater than other.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// String returns the "X.Y.Z" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// VersionString renders a possibly absent version, using "none" for nil.
func VersionString(v *Version) string {
	if v == nil {
		return "none"
	}
	return v.String()
}

// EqualVersions reports whether two possibly absent versions are equal.
// Two absent versions are equal.
func EqualVersions(a, b *Version) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
