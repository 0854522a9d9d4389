// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes the runtime.GOOS string constants used when picking
// per-platform configuration directories.
package platform
