// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/JamesHenry/universe/pkg/semver"
	"github.com/JamesHenry/universe/pkg/share"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRemoteName is the sentinel error wrapped by InvalidRemoteNameError.
	ErrInvalidRemoteName = errors.New("invalid remote name")
	// ErrInvalidEntryLocation is the sentinel error wrapped by InvalidEntryLocationError.
	ErrInvalidEntryLocation = errors.New("invalid entry location")
	// ErrInvalidShareDecl is the sentinel error wrapped by InvalidShareDeclError.
	ErrInvalidShareDecl = errors.New("invalid share declaration")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// RemoteName identifies a remote container within the manifest.
	// A valid name must be non-empty, not whitespace-only, and must not
	// contain "/" (names are used as the prefix of loaded module keys).
	RemoteName string

	// InvalidRemoteNameError is returned when a RemoteName value is
	// empty, whitespace-only, or contains "/". It wraps ErrInvalidRemoteName
	// for errors.Is() compatibility.
	InvalidRemoteNameError struct {
		Value RemoteName
	}

	// EntryLocation is where a remote's entry manifest lives: an http(s)
	// URL or a filesystem path. A valid location must be non-empty and
	// not whitespace-only.
	EntryLocation string

	// InvalidEntryLocationError is returned when an EntryLocation value is
	// empty or whitespace-only. It wraps ErrInvalidEntryLocation for errors.Is().
	InvalidEntryLocationError struct {
		Value EntryLocation
	}

	// InvalidShareDeclError is returned when a ShareDecl has invalid fields.
	// It wraps ErrInvalidShareDecl for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidShareDeclError struct {
		Key         string
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidManifestError is returned when a Manifest has invalid fields.
	// It wraps ErrInvalidManifest for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidManifestError struct {
		FieldErrors []error
	}

	// ShareDecl is one shared-dependency declaration as written in the
	// manifest. Field semantics match pkg/share.Config; zero values mean
	// "use the default derived from the declaration key".
	ShareDecl struct {
		// Import is the module specifier bundled as the local copy.
		Import string `json:"import,omitempty" mapstructure:"import"`
		// RequiredVersion is the semver range a consumed instance must satisfy.
		RequiredVersion string `json:"required_version,omitempty" mapstructure:"required_version"`
		// StrictVersion makes an unsatisfied range fatal instead of a warning.
		StrictVersion bool `json:"strict_version" mapstructure:"strict_version"`
		// Singleton allows at most one active instance per scope and key.
		Singleton bool `json:"singleton" mapstructure:"singleton"`
		// Eager bundles the instance synchronously instead of on demand.
		Eager bool `json:"eager" mapstructure:"eager"`
		// ShareScope overrides the scope this entry is shared in.
		ShareScope string `json:"share_scope,omitempty" mapstructure:"share_scope"`
		// Version is the concrete version provided, when known.
		Version string `json:"version,omitempty" mapstructure:"version"`
	}

	// Manifest holds the federation manifest: the shares this host
	// declares and the remotes it consumes.
	Manifest struct {
		// Name identifies this host in diagnostics.
		Name string `json:"name" mapstructure:"name"`
		// ShareScope is the default scope remotes are initialized into.
		ShareScope string `json:"share_scope" mapstructure:"share_scope"`
		// Shares declares the shared dependencies, keyed by share key.
		Shares map[string]ShareDecl `json:"shares" mapstructure:"shares"`
		// Remotes maps remote names to their entry locations.
		Remotes map[RemoteName]EntryLocation `json:"remotes" mapstructure:"remotes"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid returns whether the ShareDecl has valid fields: RequiredVersion,
// when present, must parse as a semver range, and Version, when present,
// must parse as a semver version.
func (d ShareDecl) IsValid() (bool, []error) {
	var errs []error
	if d.RequiredVersion != "" {
		if valid, fieldErrs := semver.Range(d.RequiredVersion).IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if d.Version != "" {
		if valid, fieldErrs := semver.SemVer(d.Version).IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidShareDeclError{FieldErrors: errs}}
	}
	return true, nil
}

// Config converts the declaration into a pkg/share.Config. Defaults that
// depend on the declaration key (ShareKey, Import, PackageName) are left
// for share.Parse to fill.
func (d ShareDecl) Config() share.Config {
	return share.Config{
		Import:          d.Import,
		RequiredVersion: semver.Range(d.RequiredVersion),
		StrictVersion:   d.StrictVersion,
		Singleton:       d.Singleton,
		Eager:           d.Eager,
		ShareScope:      d.ShareScope,
		Version:         semver.SemVer(d.Version),
	}
}

// Error implements the error interface for InvalidShareDeclError.
func (e *InvalidShareDeclError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid share declaration %q: %d field error(s)", e.Key, len(e.FieldErrors))
	}
	return fmt.Sprintf("invalid share declaration: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidShareDecl for errors.Is() compatibility.
func (e *InvalidShareDeclError) Unwrap() error { return ErrInvalidShareDecl }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Manifest has valid fields. It delegates to
// each ShareDecl's IsValid(), each RemoteName's and EntryLocation's
// IsValid(), and UI.IsValid().
func (m Manifest) IsValid() (bool, []error) {
	var errs []error
	for _, key := range sortedShareKeys(m.Shares) {
		if valid, fieldErrs := m.Shares[key].IsValid(); !valid {
			for _, err := range fieldErrs {
				var declErr *InvalidShareDeclError
				if errors.As(err, &declErr) {
					declErr.Key = key
				}
			}
			errs = append(errs, fieldErrs...)
		}
	}
	for _, name := range sortedRemoteNames(m.Remotes) {
		if valid, fieldErrs := name.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if valid, fieldErrs := m.Remotes[name].IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := m.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidManifestError{FieldErrors: errs}}
	}
	return true, nil
}

// ShareDeclaration returns the shares in the shape pkg/share.Parse accepts.
// Shares without their own share_scope inherit the manifest-level scope, so
// a declaration resolves in the same scope its remotes register into.
func (m Manifest) ShareDeclaration() map[string]share.Config {
	decl := make(map[string]share.Config, len(m.Shares))
	for key, d := range m.Shares {
		cfg := d.Config()
		if cfg.ShareScope == "" {
			cfg.ShareScope = m.Scope()
		}
		decl[key] = cfg
	}
	return decl
}

// RemoteMap returns the remotes as a plain name-to-location map, the shape
// pkg/remote's bulk loader consumes.
func (m Manifest) RemoteMap() map[string]string {
	remotes := make(map[string]string, len(m.Remotes))
	for name, entry := range m.Remotes {
		remotes[string(name)] = string(entry)
	}
	return remotes
}

// Scope returns the manifest's share scope, defaulting when unset.
func (m Manifest) Scope() string {
	if m.ShareScope == "" {
		return share.DefaultScope
	}
	return m.ShareScope
}

// Error implements the error interface for InvalidManifestError.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// String returns the string representation of the RemoteName.
func (n RemoteName) String() string { return string(n) }

// IsValid returns whether the RemoteName is valid.
// A valid name must be non-empty, not whitespace-only, and must not
// contain "/".
func (n RemoteName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" || strings.Contains(string(n), "/") {
		return false, []error{&InvalidRemoteNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRemoteNameError.
func (e *InvalidRemoteNameError) Error() string {
	return fmt.Sprintf("invalid remote name %q: must be non-empty and must not contain %q", e.Value, "/")
}

// Unwrap returns ErrInvalidRemoteName for errors.Is() compatibility.
func (e *InvalidRemoteNameError) Unwrap() error { return ErrInvalidRemoteName }

// String returns the string representation of the EntryLocation.
func (l EntryLocation) String() string { return string(l) }

// IsValid returns whether the EntryLocation is valid.
// A valid location must be non-empty and not whitespace-only.
func (l EntryLocation) IsValid() (bool, []error) {
	if strings.TrimSpace(string(l)) == "" {
		return false, []error{&InvalidEntryLocationError{Value: l}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEntryLocationError.
func (e *InvalidEntryLocationError) Error() string {
	return fmt.Sprintf("invalid entry location %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidEntryLocation for errors.Is() compatibility.
func (e *InvalidEntryLocationError) Unwrap() error { return ErrInvalidEntryLocation }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultManifest returns the default manifest
func DefaultManifest() *Manifest {
	return &Manifest{
		Name:       "host",
		ShareScope: share.DefaultScope,
		Shares:     map[string]ShareDecl{},
		Remotes:    map[RemoteName]EntryLocation{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

func sortedShareKeys(shares map[string]ShareDecl) []string {
	keys := make([]string, 0, len(shares))
	for key := range shares {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedRemoteNames(remotes map[RemoteName]EntryLocation) []RemoteName {
	names := make([]RemoteName, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
