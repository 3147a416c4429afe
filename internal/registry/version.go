package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// VersionConstraint accepts every version sharing one major version.
type VersionConstraint struct {
	Major int
}

// ParseVersionConstraint parses "N.x".
func ParseVersionConstraint(s string) (*VersionConstraint, error) {
	major, rest, found := strings.Cut(strings.TrimSpace(s), ".")
	if !found || rest != "x" {
		return nil, fmt.Errorf("invalid version constraint '%s' (expected format: N.x)", s)
	}
	n, err := strconv.Atoi(major)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid major version in constraint '%s'", s)
	}
	return &VersionConstraint{Major: n}, nil
}

// MustParseVersionConstraint panics if the constraint cannot be parsed.
func MustParseVersionConstraint(s string) *VersionConstraint {
	vc, err := ParseVersionConstraint(s)
	if err != nil {
		panic(err)
	}
	return vc
}

// Satisfies reports whether version has the constraint's major version. A
// nil constraint accepts anything.
func (vc *VersionConstraint) Satisfies(version string) bool {
	if vc == nil {
		return true
	}
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(major)
	return err == nil && n == vc.Major
}

func (vc *VersionConstraint) String() string {
	if vc == nil {
		return ""
	}
	return fmt.Sprintf("%d.x", vc.Major)
}
