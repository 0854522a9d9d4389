// SPDX-License-Identifier: MPL-2.0

package share

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func valueFactory(v any) Factory {
	return func(context.Context) (any, error) { return v, nil }
}

func TestScopeRegistryRegisterAndLookup(t *testing.T) {
	t.Parallel()

	scopes := NewScopeRegistry()
	scopes.Register("host", "default", []Registration{
		{ShareKey: "react", Version: "18.0.1", Factory: valueFactory("host-react")},
	})
	scopes.Register("remote1", "default", []Registration{
		{ShareKey: "react", Version: "18.2.0", Factory: valueFactory("remote-react")},
		{ShareKey: "lodash", Version: "4.17.21", Factory: valueFactory("remote-lodash")},
	})

	instances := scopes.Lookup("default", "react")
	if len(instances) != 2 {
		t.Fatalf("Lookup returned %d instances, want 2", len(instances))
	}
	// Registration order is preserved.
	if instances[0].Version != "18.0.1" || instances[1].Version != "18.2.0" {
		t.Errorf("instances out of registration order: %q, %q", instances[0].Version, instances[1].Version)
	}
	if instances[0].seq >= instances[1].seq {
		t.Errorf("sequence numbers not increasing: %d, %d", instances[0].seq, instances[1].seq)
	}

	if got := scopes.Lookup("default", "unknown"); len(got) != 0 {
		t.Errorf("Lookup(unknown) returned %d instances, want 0", len(got))
	}
	if got := scopes.Lookup("other", "react"); len(got) != 0 {
		t.Errorf("Lookup(other scope) returned %d instances, want 0", len(got))
	}
}

func TestScopeRegistryReinitIsNoop(t *testing.T) {
	t.Parallel()

	scopes := NewScopeRegistry()
	regs := []Registration{
		{ShareKey: "react", Version: "18.2.0", Factory: valueFactory("react")},
	}

	// A container referenced from multiple remotes may be asked to init
	// the same scope several times.
	scopes.Register("remote1", "default", regs)
	scopes.Register("remote1", "default", regs)
	scopes.Register("remote1", "default", regs)

	if got := len(scopes.Lookup("default", "react")); got != 1 {
		t.Errorf("Lookup returned %d instances after re-init, want 1", got)
	}

	// A different scope is a separate init.
	scopes.Register("remote1", "other", regs)
	if got := len(scopes.Lookup("other", "react")); got != 1 {
		t.Errorf("Lookup(other) returned %d instances, want 1", got)
	}
}

func TestScopeRegistryConcurrentRegister(t *testing.T) {
	t.Parallel()

	scopes := NewScopeRegistry()

	const containers = 32
	var wg sync.WaitGroup
	for i := 0; i < containers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scopes.Register(fmt.Sprintf("remote%d", i), "default", []Registration{
				{ShareKey: "react", Version: "18.2.0", Factory: valueFactory(i)},
			})
		}(i)
	}
	wg.Wait()

	instances := scopes.Lookup("default", "react")
	if len(instances) != containers {
		t.Fatalf("Lookup returned %d instances, want %d", len(instances), containers)
	}

	// Sequence numbers must be unique and strictly increasing in list order.
	for i := 1; i < len(instances); i++ {
		if instances[i].seq <= instances[i-1].seq {
			t.Fatalf("sequence numbers not strictly increasing at %d: %d then %d", i, instances[i-1].seq, instances[i].seq)
		}
	}
}

func TestScopeRegistrySnapshotIsACopy(t *testing.T) {
	t.Parallel()

	scopes := NewScopeRegistry()
	scopes.Register("host", "default", []Registration{
		{ShareKey: "react", Version: "18.2.0", Factory: valueFactory("react")},
	})

	snap := scopes.Snapshot("default")
	delete(snap, "react")

	if got := len(scopes.Lookup("default", "react")); got != 1 {
		t.Errorf("mutating a snapshot affected the registry: %d instances left", got)
	}
}

func TestScopeRegistryScopes(t *testing.T) {
	t.Parallel()

	scopes := NewScopeRegistry()
	scopes.Register("a", "zeta", nil)
	scopes.Register("b", "alpha", nil)

	got := scopes.Scopes()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
		t.Errorf("Scopes() = %v, want [alpha zeta]", got)
	}
}
