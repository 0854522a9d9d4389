// SPDX-License-Identifier: MPL-2.0

// Package semver provides semantic version parsing and range matching for
// shared-dependency resolution.
//
// Supported range forms are caret ("^1.2.3"), tilde ("~1.2.3"), bare
// comparators (">", ">=", "<", "<=", "="), exact versions ("1.2.3"),
// space-separated comparator conjunctions (">=1.0.0 <2.0.0"), and "*"
// (matches everything). The empty range also matches everything, mirroring
// a disabled requiredVersion in a share declaration.
//
// All functions are pure; the package performs no I/O.
package semver
