// SPDX-License-Identifier: MPL-2.0

package share

import "github.com/JamesHenry/universe/pkg/semver"

type (
	// ProvidesConfig is the build-time metadata needed to expose one import
	// as a shared module.
	ProvidesConfig struct {
		// ShareKey is the public name the import is exposed under.
		ShareKey string
		// ShareScope is the namespace the import is exposed in.
		ShareScope string
		// Version is the concrete version provided; empty when the build
		// collaborator could not determine one.
		Version semver.SemVer
		// Eager bundles the provided module synchronously.
		Eager bool
	}

	// ProvideEntry pairs a resolved import path with one ProvidesConfig.
	ProvideEntry struct {
		ImportPath string
		Provides   ProvidesConfig
	}

	// ProvideRegistry collects the provide side of a parsed share list.
	// It is a multimap: distinct share declarations may provide the same
	// import path under different share keys, and both are kept.
	ProvideRegistry struct {
		entries  []ProvideEntry
		byImport map[string][]int
	}
)

// NewProvideRegistry builds a ProvideRegistry from parsed share entries.
// Entries with providing disabled (import: false) are skipped, so every
// remaining entry yields exactly one ProvidesConfig.
func NewProvideRegistry(entries []Entry) *ProvideRegistry {
	r := &ProvideRegistry{byImport: make(map[string][]int)}
	for _, e := range entries {
		if e.Config.ImportDisabled {
			continue
		}
		r.add(e.Config.Import, ProvidesConfig{
			ShareKey:   e.Config.ShareKey,
			ShareScope: e.Config.ShareScope,
			Version:    e.Config.Version,
			Eager:      e.Config.Eager,
		})
	}
	return r
}

func (r *ProvideRegistry) add(importPath string, cfg ProvidesConfig) {
	r.byImport[importPath] = append(r.byImport[importPath], len(r.entries))
	r.entries = append(r.entries, ProvideEntry{ImportPath: importPath, Provides: cfg})
}

// AllProvides returns every registered provide entry in registration order.
// The result is consumed by the bundler's module-emission step.
func (r *ProvideRegistry) AllProvides() []ProvideEntry {
	out := make([]ProvideEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns every ProvidesConfig registered for an import path, in
// registration order.
func (r *ProvideRegistry) Lookup(importPath string) []ProvidesConfig {
	idxs := r.byImport[importPath]
	out := make([]ProvidesConfig, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.entries[i].Provides)
	}
	return out
}
