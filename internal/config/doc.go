// SPDX-License-Identifier: MPL-2.0

// Package config loads the federation manifest using Viper with CUE as the file format.
//
// The manifest is read from ./federation.cue, falling back to the platform config
// directory (~/.config/universe/federation.cue or XDG equivalent on Linux,
// ~/Library/Application Support/universe/federation.cue on macOS,
// %APPDATA%\universe\federation.cue on Windows). The package provides type-safe
// access to share declarations, remote entry locations, and UI settings.
//
// Manifest validation is performed against a CUE schema (federation_schema.cue)
// to ensure type safety and provide clear error messages for invalid manifests.
package config
