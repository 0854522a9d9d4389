// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/JamesHenry/universe/internal/issue"
	"github.com/JamesHenry/universe/pkg/cueutil"
	"github.com/JamesHenry/universe/pkg/platform"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "universe"
	// ManifestFileName is the name of the federation manifest file (without extension).
	ManifestFileName = "federation"
	// ManifestFileExt is the manifest file extension.
	ManifestFileExt = "cue"
)

//go:embed federation_schema.cue
var federationSchema string

// ConfigDir returns the universe configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven manifest loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Manifest, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load manifest canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	// Set defaults
	defaults := DefaultManifest()
	v.SetDefault("name", defaults.Name)
	v.SetDefault("share_scope", defaults.ShareScope)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath := ""

	// If a custom manifest path is set via the --config flag, use it exclusively.
	if opts.ManifestFilePath != "" {
		if !fileExists(opts.ManifestFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load federation manifest").
				WithResource(opts.ManifestFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("manifest not found: %s", opts.ManifestFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ManifestFilePath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load federation manifest").
				WithResource(opts.ManifestFilePath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the manifest values match the expected schema").
				Wrap(err).
				BuildError()
		}
		resolvedPath = opts.ManifestFilePath
	} else {
		// Prefer a manifest in the current directory
		localCuePath := ManifestFileName + "." + ManifestFileExt
		if fileExists(localCuePath) {
			if err := loadCUEIntoViper(v, localCuePath); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load federation manifest").
					WithResource(localCuePath).
					WithSuggestion("Check that the file contains valid CUE syntax").
					WithSuggestion("Verify the manifest values match the expected schema").
					Wrap(err).
					BuildError()
			}
			resolvedPath = localCuePath
		} else {
			// Fall back to the platform config directory
			cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
			if err != nil {
				return nil, "", err
			}

			cuePath := filepath.Join(cfgDir, ManifestFileName+"."+ManifestFileExt)
			if fileExists(cuePath) {
				if err := loadCUEIntoViper(v, cuePath); err != nil {
					return nil, "", issue.NewErrorContext().
						WithOperation("load federation manifest").
						WithResource(cuePath).
						WithSuggestion("Check that the file contains valid CUE syntax").
						WithSuggestion("Verify the manifest values match the expected schema").
						Wrap(err).
						BuildError()
				}
				resolvedPath = cuePath
			}
			// If no manifest found, use defaults (no error)
		}
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, "", fmt.Errorf("failed to parse manifest: %w", err)
	}

	// Validate constraints that CUE cannot express: share ranges and
	// versions must parse as semver, remote names must be usable as
	// module-key prefixes.
	if valid, errs := m.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate federation manifest").
			WithResource(resolvedPath).
			WithSuggestion("Check each share's required_version against semver range syntax").
			WithSuggestion("Remote names must be non-empty and must not contain '/'").
			Wrap(errs[0]).
			BuildError()
	}

	return &m, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Federation
// schema, and merges its contents into Viper.
//
// Note: This uses manual CUE parsing instead of cueutil.ParseAndDecode because:
// 1. The manifest decodes to map[string]any (not a struct) for Viper integration
// 2. Uses Concrete(false) because manifest fields are optional
// 3. Needs to merge into Viper's config map, not return a struct
func loadCUEIntoViper(v *viper.Viper, path string) error {
	// Read CUE file
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest file: %w", err)
	}

	// Check file size using cueutil
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	// Parse with CUE
	ctx := cuecontext.New()

	// Compile the schema
	schemaValue := ctx.CompileString(federationSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile federation schema: %w", schemaValue.Err())
	}

	// Compile the user's manifest file
	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	// Unify with schema to validate against the #Federation definition
	schema := schemaValue.LookupPath(cue.ParsePath("#Federation"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Decode to Go map
	var manifestMap map[string]any
	if err := unified.Decode(&manifestMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(manifestMap); err != nil {
		return fmt.Errorf("failed to merge manifest: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultManifest creates a default manifest file if it doesn't exist
func CreateDefaultManifest() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ManifestFileName+"."+ManifestFileExt)

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return nil // File exists
	}

	defaults := DefaultManifest()
	cueContent := GenerateCUE(defaults)

	if err := os.WriteFile(cfgPath, []byte(cueContent), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// Save writes the manifest to the config directory
func Save(m *Manifest) error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ManifestFileName+"."+ManifestFileExt)

	cueContent := GenerateCUE(m)

	// Guard against writing a manifest the loader would later reject.
	if _, err := cueutil.ParseAndDecodeString[Manifest](federationSchema, []byte(cueContent), "#Federation",
		cueutil.WithConcrete(false), cueutil.WithFilename(cfgPath)); err != nil {
		return fmt.Errorf("generated manifest failed schema validation: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(cueContent), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the manifest
func GenerateCUE(m *Manifest) string {
	var sb strings.Builder

	sb.WriteString("// Universe Federation Manifest\n")
	sb.WriteString("// See https://github.com/JamesHenry/universe for documentation.\n\n")

	sb.WriteString(fmt.Sprintf("name: %q\n", m.Name))
	sb.WriteString(fmt.Sprintf("share_scope: %q\n", m.ShareScope))

	// Shares
	if len(m.Shares) > 0 {
		sb.WriteString("\nshares: {\n")
		for _, key := range sortedShareKeys(m.Shares) {
			d := m.Shares[key]
			sb.WriteString(fmt.Sprintf("\t%q: {\n", key))
			if d.Import != "" {
				sb.WriteString(fmt.Sprintf("\t\timport: %q\n", d.Import))
			}
			if d.RequiredVersion != "" {
				sb.WriteString(fmt.Sprintf("\t\trequired_version: %q\n", d.RequiredVersion))
			}
			if d.Version != "" {
				sb.WriteString(fmt.Sprintf("\t\tversion: %q\n", d.Version))
			}
			if d.ShareScope != "" {
				sb.WriteString(fmt.Sprintf("\t\tshare_scope: %q\n", d.ShareScope))
			}
			sb.WriteString(fmt.Sprintf("\t\tstrict_version: %v\n", d.StrictVersion))
			sb.WriteString(fmt.Sprintf("\t\tsingleton: %v\n", d.Singleton))
			sb.WriteString(fmt.Sprintf("\t\teager: %v\n", d.Eager))
			sb.WriteString("\t}\n")
		}
		sb.WriteString("}\n")
	}

	// Remotes
	if len(m.Remotes) > 0 {
		sb.WriteString("\nremotes: {\n")
		for _, name := range sortedRemoteNames(m.Remotes) {
			sb.WriteString(fmt.Sprintf("\t%q: %q\n", name, m.Remotes[name]))
		}
		sb.WriteString("}\n")
	}

	// UI config
	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tcolor_scheme: %q\n", m.UI.ColorScheme))
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", m.UI.Verbose))
	sb.WriteString("}\n")

	return sb.String()
}
