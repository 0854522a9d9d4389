// SPDX-License-Identifier: MPL-2.0

package share

import (
	"context"
	"sort"
	"sync"

	"github.com/JamesHenry/universe/pkg/semver"
)

type (
	// Factory is a deferred accessor to a live shared-module value.
	Factory func(ctx context.Context) (any, error)

	// Instance is one shared module registered into a scope. It is owned by
	// the container that registered it; the registry holds a reference and
	// never mutates it.
	Instance struct {
		Scope    string
		ShareKey string
		Version  semver.SemVer
		Eager    bool
		Factory  Factory

		// seq is the stable registration sequence number, assigned under the
		// registry mutex so resolution tie-breaks are reproducible even when
		// containers initialize concurrently.
		seq uint64
	}

	// Registration is the per-module input a container supplies during init.
	Registration struct {
		ShareKey string
		Version  semver.SemVer
		Eager    bool
		Factory  Factory
	}

	// ScopeRegistry is the process-wide registry of shared-module instances,
	// keyed scope → shareKey → registration-ordered instances. Construct one
	// per hosting application; its lifetime is the application's lifetime and
	// tests get isolation by constructing their own.
	ScopeRegistry struct {
		mu     sync.Mutex
		seq    uint64
		scopes map[string]map[string][]*Instance

		// initialized records (containerID, scope) pairs so a container
		// referenced from multiple remotes cannot double-register.
		initialized map[initKey]struct{}
	}

	initKey struct {
		containerID string
		scope       string
	}
)

// NewScopeRegistry creates an empty scope registry.
func NewScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{
		scopes:      make(map[string]map[string][]*Instance),
		initialized: make(map[initKey]struct{}),
	}
}

// Register appends a container's shared instances into a scope. Safe for
// concurrent use; appends are serialized and stamped with a monotonically
// increasing sequence number. Re-registering the same container into the
// same scope is a no-op, making container init idempotent.
func (s *ScopeRegistry) Register(containerID, scope string, regs []Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := initKey{containerID: containerID, scope: scope}
	if _, done := s.initialized[key]; done {
		return
	}
	s.initialized[key] = struct{}{}

	keyed := s.scopes[scope]
	if keyed == nil {
		keyed = make(map[string][]*Instance)
		s.scopes[scope] = keyed
	}

	for _, reg := range regs {
		s.seq++
		keyed[reg.ShareKey] = append(keyed[reg.ShareKey], &Instance{
			Scope:    scope,
			ShareKey: reg.ShareKey,
			Version:  reg.Version,
			Eager:    reg.Eager,
			Factory:  reg.Factory,
			seq:      s.seq,
		})
	}
}

// Lookup returns the instances registered for a scope and share key, in
// registration order. The returned slice is a copy; the instances are not.
func (s *ScopeRegistry) Lookup(scope, shareKey string) []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyed := s.scopes[scope]
	if keyed == nil {
		return nil
	}
	out := make([]*Instance, len(keyed[shareKey]))
	copy(out, keyed[shareKey])
	return out
}

// Snapshot returns a copy of one scope's shareKey → instances mapping.
func (s *ScopeRegistry) Snapshot(scope string) map[string][]*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyed := s.scopes[scope]
	out := make(map[string][]*Instance, len(keyed))
	for k, instances := range keyed {
		list := make([]*Instance, len(instances))
		copy(list, instances)
		out[k] = list
	}
	return out
}

// Scopes returns the names of every populated scope, sorted.
func (s *ScopeRegistry) Scopes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.scopes))
	for name := range s.scopes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
