// SPDX-License-Identifier: MPL-2.0

package share

import "github.com/JamesHenry/universe/pkg/semver"

type (
	// ConsumesConfig is the build-time metadata needed to request a shared
	// import at runtime.
	ConsumesConfig struct {
		// Import is the fallback module specifier bundled with the consumer;
		// empty when providing was disabled and the key itself is the fallback.
		Import string
		// ShareKey is the public name requested from the share scope.
		ShareKey string
		// ShareScope is the namespace the request is made in.
		ShareScope string
		// RequiredVersion is the range a resolved instance must satisfy;
		// empty disables version checking.
		RequiredVersion semver.Range
		// StrictVersion makes an unsatisfied range fatal.
		StrictVersion bool
		// Singleton allows at most one active instance per scope+key.
		Singleton bool
		// PackageName names the installed package whose version is consulted
		// when the fallback's own version is needed.
		PackageName string
		// Eager resolves the consumed module synchronously at init.
		Eager bool
	}

	// ConsumeEntry pairs a declaration key with its ConsumesConfig.
	ConsumeEntry struct {
		Key      string
		Consumes ConsumesConfig
	}

	// ConsumeRegistry collects the consume side of a parsed share list.
	// Unlike the provide side, every parsed entry yields exactly one
	// ConsumesConfig: even a consume-only declaration still consumes.
	ConsumeRegistry struct {
		entries []ConsumeEntry
	}
)

// NewConsumeRegistry builds a ConsumeRegistry from parsed share entries.
func NewConsumeRegistry(entries []Entry) *ConsumeRegistry {
	r := &ConsumeRegistry{entries: make([]ConsumeEntry, 0, len(entries))}
	for _, e := range entries {
		r.entries = append(r.entries, ConsumeEntry{
			Key: e.Key,
			Consumes: ConsumesConfig{
				Import:          e.Config.Import,
				ShareKey:        e.Config.ShareKey,
				ShareScope:      e.Config.ShareScope,
				RequiredVersion: e.Config.RequiredVersion,
				StrictVersion:   e.Config.StrictVersion,
				Singleton:       e.Config.Singleton,
				PackageName:     e.Config.PackageName,
				Eager:           e.Config.Eager,
			},
		})
	}
	return r
}

// AllConsumes returns every consume entry in registration order.
func (r *ConsumeRegistry) AllConsumes() []ConsumeEntry {
	out := make([]ConsumeEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Requirement extracts the runtime resolution requirement for one entry.
func (c ConsumesConfig) Requirement() Requirement {
	return Requirement{
		RequiredVersion: c.RequiredVersion,
		StrictVersion:   c.StrictVersion,
		Singleton:       c.Singleton,
	}
}
