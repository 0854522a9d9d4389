// SPDX-License-Identifier: MPL-2.0

package share

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JamesHenry/universe/pkg/semver"
)

// DefaultScope is the share scope used when a declaration does not name one.
const DefaultScope = "default"

type (
	// Config is the fully normalized form of one shared-dependency
	// declaration. Parse resolves every accepted declaration shape into
	// this single canonical record so downstream code never re-inspects
	// dynamic declaration types.
	Config struct {
		// Import is the module specifier bundled as the local copy and, unless
		// ImportDisabled is set, provided into the share scope. Defaults to the
		// declaration key.
		Import string

		// ImportDisabled marks a consume-only entry (declared as import: false).
		// The entry still yields a ConsumesConfig but no ProvidesConfig.
		ImportDisabled bool

		// ShareKey is the public name the module is shared under.
		// Defaults to the declaration key; never empty after Parse.
		ShareKey string

		// ShareScope is the namespace the module is shared in.
		ShareScope string

		// RequiredVersion is the range a consumed instance must satisfy.
		// Empty means version checking is disabled.
		RequiredVersion semver.Range

		// StrictVersion makes an unsatisfied range fatal instead of
		// falling back to the bundled copy with a warning.
		StrictVersion bool

		// Singleton allows at most one active instance per scope+key.
		Singleton bool

		// Eager bundles the instance synchronously instead of fetching it
		// on demand.
		Eager bool

		// PackageName is the package whose installed version is read when
		// Version is not given explicitly. Defaults to the import path.
		PackageName string

		// Version is the concrete version provided, when known at build time.
		Version semver.SemVer
	}

	// Entry pairs a declaration key with its normalized Config.
	Entry struct {
		Key    string
		Config Config
	}
)

// Parse normalizes a user-supplied shared-dependency declaration into an
// ordered list of entries. Accepted shapes:
//
//   - []string / []any of bare specifiers,
//   - map[string]any where each value is a bare specifier string, a version
//     range string, or an options record (map[string]any or Config),
//   - map[string]string and map[string]Config as conveniences.
//
// A bare string value is treated as an import path when it equals the key
// or does not parse as a version range; otherwise it is treated as the
// required version of a dependency whose import path equals the key.
//
// List input preserves declaration order; map input is ordered by key so
// repeated parses of the same declaration agree.
func Parse(decl any) ([]Entry, error) {
	switch d := decl.(type) {
	case []string:
		items := make([]any, len(d))
		for i, s := range d {
			items[i] = s
		}
		return parseList(items)
	case []any:
		return parseList(d)
	case map[string]string:
		m := make(map[string]any, len(d))
		for k, v := range d {
			m[k] = v
		}
		return parseMap(m)
	case map[string]Config:
		m := make(map[string]any, len(d))
		for k, v := range d {
			m[k] = v
		}
		return parseMap(m)
	case map[string]any:
		return parseMap(d)
	case nil:
		return nil, nil
	default:
		return nil, &ConfigError{Key: "", Reason: fmt.Sprintf("unsupported declaration type %T", decl)}
	}
}

func parseList(items []any) ([]Entry, error) {
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ConfigError{
				Key:    fmt.Sprintf("[%d]", i),
				Reason: fmt.Sprintf("list entries must be strings, got %T", item),
			}
		}
		if strings.TrimSpace(s) == "" {
			return nil, &ConfigError{Key: fmt.Sprintf("[%d]", i), Reason: "empty specifier"}
		}
		cfg, err := normalizeString(s, s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: s, Config: cfg})
	}
	return entries, nil
}

func parseMap(m map[string]any) ([]Entry, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			return nil, &ConfigError{Key: key, Reason: "empty share key"}
		}

		var (
			cfg Config
			err error
		)
		switch v := m[key].(type) {
		case string:
			cfg, err = normalizeString(key, v)
		case Config:
			cfg, err = normalizeOptions(key, v)
		case map[string]any:
			cfg, err = decodeOptions(key, v)
		default:
			err = &ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("value must be a string or an options record, got %T", m[key]),
			}
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Config: cfg})
	}
	return entries, nil
}

// normalizeString resolves the bare-string declaration rule.
func normalizeString(key, value string) (Config, error) {
	cfg := Config{}
	if value != key && semver.IsValidRange(value) && value != "" {
		cfg.RequiredVersion = semver.Range(value)
	} else {
		cfg.Import = value
	}
	return normalizeOptions(key, cfg)
}

// normalizeOptions applies defaults and validates a Config against the
// declaration key it was given under.
func normalizeOptions(key string, cfg Config) (Config, error) {
	if cfg.ShareKey == "" {
		cfg.ShareKey = key
	}
	if cfg.ShareScope == "" {
		cfg.ShareScope = DefaultScope
	}
	if cfg.Import == "" && !cfg.ImportDisabled {
		cfg.Import = key
	}
	if cfg.ImportDisabled {
		cfg.Import = ""
	}
	if cfg.PackageName == "" {
		cfg.PackageName = packageNameFromImport(cfg.Import, key)
	}

	if cfg.RequiredVersion != "" {
		if ok, errs := cfg.RequiredVersion.IsValid(); !ok {
			return Config{}, &ConfigError{Key: key, Reason: errs[0].Error()}
		}
	}
	if cfg.Version != "" {
		if ok, errs := cfg.Version.IsValid(); !ok {
			return Config{}, &ConfigError{Key: key, Reason: errs[0].Error()}
		}
	}

	return cfg, nil
}

// decodeOptions converts a duck-typed options record into a Config.
// Recognized fields mirror the Config struct; "import" additionally
// accepts false to disable providing, and "requiredVersion" accepts
// false to disable version checking.
func decodeOptions(key string, raw map[string]any) (Config, error) {
	cfg := Config{}
	for field, value := range raw {
		switch field {
		case "import":
			switch v := value.(type) {
			case string:
				cfg.Import = v
			case bool:
				if v {
					return Config{}, &ConfigError{Key: key, Reason: "import must be a string or false"}
				}
				cfg.ImportDisabled = true
			default:
				return Config{}, &ConfigError{Key: key, Reason: fmt.Sprintf("import must be a string or false, got %T", value)}
			}
		case "shareKey":
			s, err := stringField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.ShareKey = s
		case "shareScope":
			s, err := stringField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.ShareScope = s
		case "requiredVersion":
			switch v := value.(type) {
			case string:
				cfg.RequiredVersion = semver.Range(v)
			case bool:
				if v {
					return Config{}, &ConfigError{Key: key, Reason: "requiredVersion must be a range string or false"}
				}
			default:
				return Config{}, &ConfigError{Key: key, Reason: fmt.Sprintf("requiredVersion must be a range string or false, got %T", value)}
			}
		case "version":
			s, err := stringField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.Version = semver.SemVer(s)
		case "packageName":
			s, err := stringField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.PackageName = s
		case "strictVersion":
			b, err := boolField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.StrictVersion = b
		case "singleton":
			b, err := boolField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.Singleton = b
		case "eager":
			b, err := boolField(key, field, value)
			if err != nil {
				return Config{}, err
			}
			cfg.Eager = b
		default:
			return Config{}, &ConfigError{Key: key, Reason: fmt.Sprintf("unknown field %q", field)}
		}
	}
	return normalizeOptions(key, cfg)
}

func stringField(key, field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ConfigError{Key: key, Reason: fmt.Sprintf("%s must be a string, got %T", field, value)}
	}
	return s, nil
}

func boolField(key, field string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, &ConfigError{Key: key, Reason: fmt.Sprintf("%s must be a bool, got %T", field, value)}
	}
	return b, nil
}

// packageNameFromImport derives the installed-package name for an import
// specifier: the package root, without any subpath beyond the scope segment.
func packageNameFromImport(importPath, key string) string {
	specifier := importPath
	if specifier == "" {
		specifier = key
	}
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
