// SPDX-License-Identifier: MPL-2.0

package share

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JamesHenry/universe/pkg/semver"
)

// ErrInvalidShareConfig is the sentinel error wrapped by ConfigError.
// ErrVersionMismatch is the sentinel error wrapped by VersionMismatchError.
// ErrSingletonViolation is the sentinel error wrapped by SingletonViolationError.
var (
	ErrInvalidShareConfig = errors.New("invalid share config")
	ErrVersionMismatch    = errors.New("no shared version satisfies required range")
	ErrSingletonViolation = errors.New("singleton share has conflicting versions")
)

type (
	// ConfigError is returned when a share declaration cannot be normalized.
	// It is fatal at build time: a malformed declaration means the provide
	// and consume sides cannot be derived.
	ConfigError struct {
		// Key is the share key (or list index) the bad entry was declared under.
		Key string
		// Reason describes what made the entry unnormalizable.
		Reason string
	}

	// VersionMismatchError is returned when strictVersion is set and no
	// registered instance satisfies the required range.
	VersionMismatchError struct {
		Scope     string
		ShareKey  string
		Required  semver.Range
		Available []string
	}

	// SingletonViolationError is returned when a singleton share key has
	// more than one distinct version registered and strictVersion is set.
	SingletonViolationError struct {
		Scope    string
		ShareKey string
		Versions []string
	}
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("share config %q: %s", e.Key, e.Reason)
}

// Unwrap returns ErrInvalidShareConfig so callers can use errors.Is for programmatic detection.
func (e *ConfigError) Unwrap() error { return ErrInvalidShareConfig }

// Error implements the error interface.
func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("shared module %q in scope %q: no registered version satisfies %q (available: %s)",
		e.ShareKey, e.Scope, e.Required, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrVersionMismatch so callers can use errors.Is for programmatic detection.
func (e *VersionMismatchError) Unwrap() error { return ErrVersionMismatch }

// Error implements the error interface.
func (e *SingletonViolationError) Error() string {
	return fmt.Sprintf("singleton shared module %q in scope %q has conflicting versions: %s",
		e.ShareKey, e.Scope, strings.Join(e.Versions, ", "))
}

// Unwrap returns ErrSingletonViolation so callers can use errors.Is for programmatic detection.
func (e *SingletonViolationError) Unwrap() error { return ErrSingletonViolation }
