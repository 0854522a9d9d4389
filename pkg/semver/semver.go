// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Version is a parsed semantic version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Original   string
}

// versionRegex matches semantic version strings, with an optional leading "v".
var versionRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z\-\.]+))?(?:\+([0-9A-Za-z\-\.]+))?$`)

// comparatorRegex matches a single comparator within a range expression.
var comparatorRegex = regexp.MustCompile(`^([~^]|>=|<=|>|<|=)?v?(\d+(?:\.\d+)?(?:\.\d+)?(?:-[0-9A-Za-z\-\.]+)?)$`)

// ParseVersion parses a version string into a Version.
func ParseVersion(s string) (*Version, error) {
	matches := versionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return nil, fmt.Errorf("invalid version format: %s", s)
	}

	v := &Version{Original: s}

	var err error
	v.Major, err = strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %w", err)
	}

	if matches[2] != "" {
		v.Minor, err = strconv.Atoi(matches[2])
		if err != nil {
			return nil, fmt.Errorf("invalid minor version: %w", err)
		}
	}

	if matches[3] != "" {
		v.Patch, err = strconv.Atoi(matches[3])
		if err != nil {
			return nil, fmt.Errorf("invalid patch version: %w", err)
		}
	}

	v.Prerelease = matches[4]

	return v, nil
}

// String returns the version as originally written.
func (v *Version) String() string {
	return v.Original
}

// Compare compares two versions by semver precedence.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}

	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}

	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}

	// Prerelease versions have lower precedence than the release.
	if v.Prerelease == "" && other.Prerelease != "" {
		return 1
	}
	if v.Prerelease != "" && other.Prerelease == "" {
		return -1
	}
	if v.Prerelease != other.Prerelease {
		if v.Prerelease < other.Prerelease {
			return -1
		}
		return 1
	}

	return 0
}

// comparator is a single operator+version pair within a Constraint.
type comparator struct {
	op      string
	version *Version
}

// Constraint is a parsed version range. A range is either "*" (matches
// everything) or a space-separated conjunction of comparators, e.g.
// "^1.2.0", "~1.0.0", ">=1.0.0 <2.0.0", "1.2.3".
type Constraint struct {
	comparators []comparator
	any         bool
	Original    string
}

// ParseConstraint parses a version range string.
func ParseConstraint(s string) (*Constraint, error) {
	trimmed := strings.TrimSpace(s)

	if trimmed == "" || trimmed == "*" {
		return &Constraint{any: true, Original: s}, nil
	}

	c := &Constraint{Original: s}
	for _, part := range strings.Fields(trimmed) {
		matches := comparatorRegex.FindStringSubmatch(part)
		if matches == nil {
			return nil, fmt.Errorf("invalid range format: %s", s)
		}

		op := matches[1]
		if op == "" {
			op = "="
		}

		version, err := ParseVersion(matches[2])
		if err != nil {
			return nil, fmt.Errorf("invalid version in range: %w", err)
		}

		c.comparators = append(c.comparators, comparator{op: op, version: version})
	}

	return c, nil
}

// Matches reports whether a version satisfies every comparator in the range.
func (c *Constraint) Matches(v *Version) bool {
	if c.any {
		return true
	}
	for _, cmp := range c.comparators {
		if !cmp.matches(v) {
			return false
		}
	}
	return true
}

func (c comparator) matches(v *Version) bool {
	switch c.op {
	case "=":
		return v.Compare(c.version) == 0

	case "^":
		// Caret: allows changes that do not modify the left-most non-zero digit.
		// ^1.2.3 := >=1.2.3 <2.0.0
		// ^0.2.3 := >=0.2.3 <0.3.0
		// ^0.0.3 := >=0.0.3 <0.0.4
		if v.Compare(c.version) < 0 {
			return false
		}
		if c.version.Major != 0 {
			return v.Major == c.version.Major
		}
		if c.version.Minor != 0 {
			return v.Major == 0 && v.Minor == c.version.Minor
		}
		return v.Major == 0 && v.Minor == 0 && v.Patch == c.version.Patch

	case "~":
		// Tilde: allows patch-level changes.
		// ~1.2.3 := >=1.2.3 <1.3.0
		if v.Compare(c.version) < 0 {
			return false
		}
		return v.Major == c.version.Major && v.Minor == c.version.Minor

	case ">":
		return v.Compare(c.version) > 0

	case ">=":
		return v.Compare(c.version) >= 0

	case "<":
		return v.Compare(c.version) < 0

	case "<=":
		return v.Compare(c.version) <= 0

	default:
		return false
	}
}

// Satisfies reports whether version satisfies rng. An empty or "*" range
// always satisfies. A malformed version or range never satisfies.
func Satisfies(version, rng string) bool {
	c, err := ParseConstraint(rng)
	if err != nil {
		return false
	}
	if c.any {
		return true
	}
	v, err := ParseVersion(version)
	if err != nil {
		return false
	}
	return c.Matches(v)
}

// MaxSatisfying returns the highest version from availableVersions that
// satisfies rng. Invalid version strings are skipped.
func MaxSatisfying(rng string, availableVersions []string) (string, error) {
	c, err := ParseConstraint(rng)
	if err != nil {
		return "", err
	}

	var matching []*Version
	for _, vs := range availableVersions {
		v, err := ParseVersion(vs)
		if err != nil {
			continue
		}
		if c.Matches(v) {
			matching = append(matching, v)
		}
	}

	if len(matching) == 0 {
		return "", fmt.Errorf("no version matches range %q (available: %v)", rng, availableVersions)
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].Compare(matching[j]) > 0
	})

	return matching[0].Original, nil
}

// IsValidVersion reports whether s is a valid semantic version.
func IsValidVersion(s string) bool {
	_, err := ParseVersion(s)
	return err == nil
}

// IsValidRange reports whether s is a valid version range.
func IsValidRange(s string) bool {
	_, err := ParseConstraint(s)
	return err == nil
}

// SortVersions sorts version strings in descending order (newest first),
// dropping any that fail to parse.
func SortVersions(versions []string) []string {
	var parsed []*Version
	for _, vs := range versions {
		v, err := ParseVersion(vs)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
	}

	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].Compare(parsed[j]) > 0
	})

	result := make([]string, len(parsed))
	for i, v := range parsed {
		result[i] = v.Original
	}

	return result
}
