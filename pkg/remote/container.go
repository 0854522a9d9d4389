// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/JamesHenry/universe/pkg/semver"
	"github.com/JamesHenry/universe/pkg/share"
)

type (
	// Container is the runtime contract of a loaded remote: register its
	// shared modules, hand out factories for its exposed modules, and
	// enumerate everything it is willing to expose.
	//
	// Within one container, Init completes before any Get result is valid;
	// the Registry enforces that ordering during load.
	Container interface {
		// Name returns the remote's name.
		Name() string

		// Init registers the container's shared instances into the scope
		// registry. Must be idempotent per (container, scope).
		Init(ctx context.Context, scopes *share.ScopeRegistry, scope string) error

		// Get returns the deferred factory for one exposed module path.
		Get(ctx context.Context, module string) (share.Factory, error)

		// ModuleNames enumerates every module path the remote exposes.
		// May fetch on first call; memoized thereafter.
		ModuleNames(ctx context.Context) ([]string, error)
	}

	// entryManifest is the wire form of a remote's entry point, produced by
	// the build collaborator: the remote's identity, the modules it exposes
	// (module path → payload reference), and the shared modules its init
	// contributes to the share scope.
	entryManifest struct {
		Name    string            `json:"name"`
		Version semver.SemVer     `json:"version"`
		Exposes map[string]string `json:"exposes"`
		Shared  []sharedEntry     `json:"shared,omitempty"`
	}

	sharedEntry struct {
		ShareKey string        `json:"shareKey"`
		Version  semver.SemVer `json:"version"`
		Eager    bool          `json:"eager,omitempty"`
		Module   string        `json:"module"`
	}

	// manifestContainer is the Container backed by a fetched entry manifest.
	// Module payloads are fetched by reference relative to the entry
	// location and memoized, so repeated Get factories never double-fetch.
	manifestContainer struct {
		name     string
		entryURL string
		manifest entryManifest
		fetcher  Fetcher

		mu       sync.Mutex
		inMemo   map[string]*moduleLoad
		nameMemo []string
	}

	// moduleLoad is the first-writer-wins handle for one module payload.
	moduleLoad struct {
		done  chan struct{}
		value any
		err   error
	}
)

// newManifestContainer parses entry bytes into a usable container.
func newManifestContainer(name, entryURL string, entry []byte, fetcher Fetcher) (*manifestContainer, error) {
	var manifest entryManifest
	if err := json.Unmarshal(entry, &manifest); err != nil {
		return nil, fmt.Errorf("malformed entry manifest: %w", err)
	}
	if manifest.Name == "" {
		manifest.Name = name
	}
	if manifest.Version != "" {
		if ok, errs := manifest.Version.IsValid(); !ok {
			return nil, errs[0]
		}
	}
	for _, s := range manifest.Shared {
		if s.ShareKey == "" {
			return nil, fmt.Errorf("entry manifest declares a shared module without a shareKey")
		}
	}

	return &manifestContainer{
		name:     name,
		entryURL: entryURL,
		manifest: manifest,
		fetcher:  fetcher,
		inMemo:   make(map[string]*moduleLoad),
	}, nil
}

// Name returns the remote's name.
func (c *manifestContainer) Name() string { return c.name }

// Init appends the manifest's shared modules into the scope registry.
// ScopeRegistry.Register is itself idempotent per (containerID, scope), so
// a container referenced from multiple remotes registers once.
func (c *manifestContainer) Init(ctx context.Context, scopes *share.ScopeRegistry, scope string) error {
	regs := make([]share.Registration, 0, len(c.manifest.Shared))
	for _, s := range c.manifest.Shared {
		ref := s.Module
		regs = append(regs, share.Registration{
			ShareKey: s.ShareKey,
			Version:  s.Version,
			Eager:    s.Eager,
			Factory: func(ctx context.Context) (any, error) {
				return c.loadPayload(ctx, ref)
			},
		})
	}
	scopes.Register(c.name+"\n"+c.entryURL, scope, regs)
	return nil
}

// Get returns a factory for one exposed module. Unknown modules fail
// immediately rather than at factory invocation.
func (c *manifestContainer) Get(ctx context.Context, module string) (share.Factory, error) {
	ref, ok := c.manifest.Exposes[module]
	if !ok {
		return nil, &ModuleLoadError{
			Remote: c.name,
			Module: module,
			Cause:  fmt.Errorf("module is not exposed by this remote"),
		}
	}
	return func(ctx context.Context) (any, error) {
		value, err := c.loadPayload(ctx, ref)
		if err != nil {
			return nil, &ModuleLoadError{Remote: c.name, Module: module, Cause: err}
		}
		return value, nil
	}, nil
}

// ModuleNames returns the remote's self-declared exposed module paths,
// sorted for deterministic enumeration.
func (c *manifestContainer) ModuleNames(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nameMemo == nil {
		names := make([]string, 0, len(c.manifest.Exposes))
		for name := range c.manifest.Exposes {
			names = append(names, name)
		}
		sort.Strings(names)
		c.nameMemo = names
	}
	return c.nameMemo, nil
}

// loadPayload fetches and decodes one payload reference, at most once per
// reference. Concurrent callers share a single in-flight fetch, and a
// caller abandoning its wait does not cancel the fetch: other callers may
// depend on the same cache entry.
func (c *manifestContainer) loadPayload(ctx context.Context, ref string) (any, error) {
	c.mu.Lock()
	load, found := c.inMemo[ref]
	if !found {
		load = &moduleLoad{done: make(chan struct{})}
		c.inMemo[ref] = load
	}
	c.mu.Unlock()

	if !found {
		go func() {
			load.value, load.err = c.fetchPayload(context.WithoutCancel(ctx), ref)
			close(load.done)
		}()
	}

	select {
	case <-load.done:
		return load.value, load.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *manifestContainer) fetchPayload(ctx context.Context, ref string) (any, error) {
	location, err := resolveRef(c.entryURL, ref)
	if err != nil {
		return nil, err
	}

	data, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	// Module payloads are JSON values; anything else is kept verbatim as
	// text so opaque assets can still be swept into an offline cache.
	if json.Valid(data) {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("malformed module payload at %s: %w", location, err)
		}
		return value, nil
	}
	return string(data), nil
}
