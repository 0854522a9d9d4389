// SPDX-License-Identifier: MPL-2.0

package share

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/JamesHenry/universe/pkg/semver"
)

type (
	// Requirement captures the runtime constraints of one consumption request.
	Requirement struct {
		// RequiredVersion is the range a candidate must satisfy; empty
		// disables the version filter.
		RequiredVersion semver.Range
		// StrictVersion turns fallback-with-warning outcomes into errors.
		StrictVersion bool
		// Singleton requires at most one distinct registered version.
		Singleton bool
	}

	// Resolution is the outcome of a resolve call. Exactly one of Instance
	// or Fallback is meaningful: a nil Instance with Fallback set directs
	// the consumer to its own bundled copy.
	Resolution struct {
		Instance *Instance
		Fallback bool
	}

	// Resolver answers consumption requests against a scope registry.
	Resolver struct {
		scopes *ScopeRegistry
		logger *log.Logger
	}

	// ResolverOption configures a Resolver.
	ResolverOption func(*Resolver)
)

// WithLogger sets the logger used for non-fatal resolution warnings.
func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver over the given scope registry.
func NewResolver(scopes *ScopeRegistry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		scopes: scopes,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks a concrete shared instance for scope+shareKey, or directs
// the caller to its bundled fallback copy.
//
// The resolution order is: no candidates → fallback; singleton conflict on
// the registered set → fail (strict) or warn; version filter → fail
// (strict) or warn+fallback when nothing satisfies; otherwise the highest
// satisfying version wins, with the earliest-registered instance breaking
// version ties. Resolution is read-only and idempotent: repeated calls
// against an unchanged registry return the same instance.
func (r *Resolver) Resolve(scope, shareKey string, req Requirement) (Resolution, error) {
	candidates := r.scopes.Lookup(scope, shareKey)
	if len(candidates) == 0 {
		return Resolution{Fallback: true}, nil
	}

	// Singleton conflicts are detected on the full registered set, before
	// the range filter narrows it: "at most one active instance per
	// scope+key" is a property of the scope, not of this request.
	if req.Singleton {
		if versions := distinctVersions(candidates); len(versions) > 1 {
			if req.StrictVersion {
				return Resolution{}, &SingletonViolationError{Scope: scope, ShareKey: shareKey, Versions: versions}
			}
			r.logger.Warn("singleton shared module has conflicting versions; picking highest satisfying",
				"scope", scope, "shareKey", shareKey, "versions", versions)
		}
	}

	satisfying := candidates
	if req.RequiredVersion != "" {
		satisfying = satisfying[:0:0]
		for _, c := range candidates {
			if semver.Satisfies(c.Version.String(), req.RequiredVersion.String()) {
				satisfying = append(satisfying, c)
			}
		}
	}

	if len(satisfying) == 0 {
		available := versionList(candidates)
		if req.StrictVersion {
			return Resolution{}, &VersionMismatchError{
				Scope:     scope,
				ShareKey:  shareKey,
				Required:  req.RequiredVersion,
				Available: available,
			}
		}
		r.logger.Warn("no shared version satisfies required range; using bundled fallback",
			"scope", scope, "shareKey", shareKey, "required", req.RequiredVersion, "available", available)
		return Resolution{Fallback: true}, nil
	}

	return Resolution{Instance: pickHighest(satisfying)}, nil
}

// pickHighest selects the candidate with the highest version, breaking ties
// by earliest registration sequence so resolution is deterministic.
func pickHighest(candidates []*Instance) *Instance {
	sorted := make([]*Instance, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, erri := semver.ParseVersion(sorted[i].Version.String())
		vj, errj := semver.ParseVersion(sorted[j].Version.String())
		if erri != nil || errj != nil {
			// Unparseable versions sort last.
			return errj != nil && erri == nil
		}
		if cmp := vi.Compare(vj); cmp != 0 {
			return cmp > 0
		}
		return sorted[i].seq < sorted[j].seq
	})
	return sorted[0]
}

func distinctVersions(candidates []*Instance) []string {
	seen := make(map[semver.SemVer]struct{}, len(candidates))
	var versions []string
	for _, c := range candidates {
		if _, ok := seen[c.Version]; ok {
			continue
		}
		seen[c.Version] = struct{}{}
		versions = append(versions, c.Version.String())
	}
	return versions
}

func versionList(candidates []*Instance) []string {
	versions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		versions = append(versions, c.Version.String())
	}
	return versions
}
