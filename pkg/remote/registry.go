// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/JamesHenry/universe/pkg/share"
)

type (
	// Registry resolves remote descriptors into loaded, initialized
	// containers. Each descriptor is fetched and initialized at most once
	// for the registry's lifetime; concurrent resolves for the same
	// descriptor share a single load, and later resolves return the cached
	// container (or its cached failure) without re-fetching.
	Registry struct {
		fetcher Fetcher
		scopes  *share.ScopeRegistry
		logger  *log.Logger

		mu    sync.Mutex
		loads map[string]*containerLoad
	}

	// containerLoad is the first-writer-wins promise handle for one
	// descriptor's load.
	containerLoad struct {
		done      chan struct{}
		container Container
		err       error
	}

	// RegistryOption configures a Registry.
	RegistryOption func(*Registry)
)

// WithRegistryLogger sets the logger used for load progress and failures.
func WithRegistryLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a Registry that fetches entries with fetcher and
// feeds each loaded container's shared modules into scopes.
func NewRegistry(fetcher Fetcher, scopes *share.ScopeRegistry, opts ...RegistryOption) *Registry {
	r := &Registry{
		fetcher: fetcher,
		scopes:  scopes,
		logger:  log.Default(),
		loads:   make(map[string]*containerLoad),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the loaded container for a descriptor, performing the
// fetch+init on first call. The underlying load runs detached from the
// caller's context: a caller that stops waiting does not cancel the load,
// since other callers may depend on the same cache entry. The caller's own
// wait still honors its context.
func (r *Registry) Resolve(ctx context.Context, desc Descriptor) (Container, error) {
	r.mu.Lock()
	load, found := r.loads[desc.key()]
	if !found {
		load = &containerLoad{done: make(chan struct{})}
		r.loads[desc.key()] = load
	}
	r.mu.Unlock()

	if !found {
		go func() {
			load.container, load.err = r.load(context.WithoutCancel(ctx), desc)
			close(load.done)
		}()
	}

	select {
	case <-load.done:
		return load.container, load.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load performs the one fetch+instantiate+init for a descriptor.
func (r *Registry) load(ctx context.Context, desc Descriptor) (Container, error) {
	r.logger.Debug("loading remote container", "remote", desc.Name, "entry", desc.EntryURL)

	entry, err := r.fetcher.Fetch(ctx, desc.EntryURL)
	if err != nil {
		return nil, &RemoteLoadError{Name: desc.Name, EntryURL: desc.EntryURL, Cause: err}
	}

	container, err := newManifestContainer(desc.Name, desc.EntryURL, entry, r.fetcher)
	if err != nil {
		return nil, &RemoteLoadError{Name: desc.Name, EntryURL: desc.EntryURL, Cause: err}
	}

	// Init must complete before any Get result from this container is
	// considered valid, so it happens inside the one-time load.
	if err := container.Init(ctx, r.scopes, desc.scope()); err != nil {
		return nil, &RemoteInitError{Name: desc.Name, Cause: err}
	}

	r.logger.Debug("remote container initialized", "remote", desc.Name, "scope", desc.scope())
	return container, nil
}

// Scopes exposes the share-scope registry the loaded containers feed.
func (r *Registry) Scopes() *share.ScopeRegistry {
	return r.scopes
}
