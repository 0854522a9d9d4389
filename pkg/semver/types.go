// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"fmt"
)

// ErrInvalidSemVer is the sentinel error wrapped by InvalidSemVerError.
// ErrInvalidRange is the sentinel error wrapped by InvalidRangeError.
var (
	ErrInvalidSemVer = errors.New("invalid semver")
	ErrInvalidRange  = errors.New("invalid version range")
)

type (
	// SemVer represents a concrete semantic version string (e.g., "1.0.0", "v2.3.4-alpha.1").
	SemVer string

	// InvalidSemVerError is returned when a SemVer value does not match
	// the expected semantic version format.
	InvalidSemVerError struct {
		Value SemVer
	}

	// Range represents a version range string (e.g., "^1.2.0", "~1.0.0", ">=1.0.0 <2.0.0").
	Range string

	// InvalidRangeError is returned when a Range value does not match
	// the expected range format.
	InvalidRangeError struct {
		Value Range
	}
)

// Error implements the error interface.
func (e *InvalidSemVerError) Error() string {
	return fmt.Sprintf("invalid semver %q", e.Value)
}

// Unwrap returns ErrInvalidSemVer so callers can use errors.Is for programmatic detection.
func (e *InvalidSemVerError) Unwrap() error { return ErrInvalidSemVer }

// IsValid returns whether the SemVer is a valid semantic version string,
// and a list of validation errors if it is not.
func (s SemVer) IsValid() (bool, []error) {
	if _, err := ParseVersion(string(s)); err != nil {
		return false, []error{&InvalidSemVerError{Value: s}}
	}
	return true, nil
}

// String returns the string representation of the SemVer.
func (s SemVer) String() string { return string(s) }

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid version range %q", e.Value)
}

// Unwrap returns ErrInvalidRange so callers can use errors.Is for programmatic detection.
func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// IsValid returns whether the Range is a valid version range string,
// and a list of validation errors if it is not.
func (s Range) IsValid() (bool, []error) {
	if _, err := ParseConstraint(string(s)); err != nil {
		return false, []error{&InvalidRangeError{Value: s}}
	}
	return true, nil
}

// String returns the string representation of the Range.
func (s Range) String() string { return string(s) }
