// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultModuleConcurrency = 8

type (
	// FailureKind classifies one bulk-load failure.
	FailureKind string

	// LoadFailure records one remote or module that could not be loaded
	// during a bulk sweep.
	LoadFailure struct {
		// Remote is the remote's name from the remote map.
		Remote string
		// Module is the failed module path; empty when the whole remote
		// failed to load or initialize.
		Module string
		// Kind classifies the failure.
		Kind FailureKind
		// Err is the underlying error.
		Err error
	}

	// BulkResult aggregates a sweep: every successfully loaded module keyed
	// "remoteName/moduleName", plus one failure record per remote or module
	// that could not be loaded.
	BulkResult struct {
		Loaded map[string]any
		Errors []LoadFailure
	}

	// BulkOption configures a bulk load.
	BulkOption func(*bulkOptions)

	bulkOptions struct {
		moduleConcurrency int
		scope             string
	}
)

// Failure kinds, mirroring the error taxonomy.
const (
	FailureRemoteLoad FailureKind = "remote_load"
	FailureRemoteInit FailureKind = "remote_init"
	FailureModuleLoad FailureKind = "module_load"
)

// WithModuleConcurrency bounds how many module factories are evaluated in
// parallel per remote.
func WithModuleConcurrency(n int) BulkOption {
	return func(o *bulkOptions) {
		if n > 0 {
			o.moduleConcurrency = n
		}
	}
}

// WithScope sets the share scope the swept remotes initialize into.
// Empty means share.DefaultScope.
func WithScope(scope string) BulkOption {
	return func(o *bulkOptions) {
		o.scope = scope
	}
}

// BulkLoad eagerly materializes every module exposed by every remote in the
// map, e.g. to populate an offline cache, without the caller knowing module
// names in advance. Remotes resolve concurrently; within each remote the
// exposed modules are enumerated and every factory is invoked to force a
// full load, with bounded parallelism.
//
// One remote's or module's failure never aborts the sweep: it is recorded
// against that entry and the rest proceeds, so the caller receives partial
// coverage plus a precise failure list rather than an all-or-nothing error.
func (r *Registry) BulkLoad(ctx context.Context, remotes map[string]string, opts ...BulkOption) *BulkResult {
	options := bulkOptions{moduleConcurrency: defaultModuleConcurrency}
	for _, opt := range opts {
		opt(&options)
	}

	result := &BulkResult{Loaded: make(map[string]any)}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(key string, value any) {
		mu.Lock()
		defer mu.Unlock()
		result.Loaded[key] = value
	}
	fail := func(f LoadFailure) {
		mu.Lock()
		defer mu.Unlock()
		result.Errors = append(result.Errors, f)
	}

	names := make([]string, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wg.Add(1)
		go func(name, entryURL string) {
			defer wg.Done()
			r.sweepRemote(ctx, name, entryURL, options, record, fail)
		}(name, remotes[name])
	}
	wg.Wait()

	// Deterministic failure order for reporting.
	sort.Slice(result.Errors, func(i, j int) bool {
		if result.Errors[i].Remote != result.Errors[j].Remote {
			return result.Errors[i].Remote < result.Errors[j].Remote
		}
		return result.Errors[i].Module < result.Errors[j].Module
	})

	return result
}

// sweepRemote loads one remote and forces every module it exposes.
func (r *Registry) sweepRemote(ctx context.Context, name, entryURL string, options bulkOptions,
	record func(string, any), fail func(LoadFailure)) {
	container, err := r.Resolve(ctx, Descriptor{Name: name, EntryURL: entryURL, Scope: options.scope})
	if err != nil {
		fail(LoadFailure{Remote: name, Kind: failureKind(err), Err: err})
		return
	}

	moduleNames, err := container.ModuleNames(ctx)
	if err != nil {
		fail(LoadFailure{Remote: name, Kind: FailureRemoteLoad, Err: err})
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(options.moduleConcurrency)
	for _, module := range moduleNames {
		g.Go(func() error {
			factory, err := container.Get(gctx, module)
			if err != nil {
				fail(LoadFailure{Remote: name, Module: module, Kind: FailureModuleLoad, Err: err})
				return nil
			}
			value, err := factory(gctx)
			if err != nil {
				fail(LoadFailure{Remote: name, Module: module, Kind: FailureModuleLoad, Err: err})
				return nil
			}
			record(name+"/"+strings.TrimPrefix(module, "./"), value)
			return nil
		})
	}
	// Workers never return errors; failures are recorded per module.
	_ = g.Wait()
}

// failureKind maps a resolve error onto its failure class.
func failureKind(err error) FailureKind {
	if errors.Is(err, ErrRemoteInit) {
		return FailureRemoteInit
	}
	return FailureRemoteLoad
}
