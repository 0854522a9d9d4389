// SPDX-License-Identifier: MPL-2.0

package remote

import "github.com/JamesHenry/universe/pkg/share"

// Descriptor identifies where a remote container's entry point lives and
// which share scope it participates in.
type Descriptor struct {
	// Name is the remote's name as referenced by consumers ("app1" in
	// "app1/Widget").
	Name string

	// EntryURL locates the remote's entry manifest: an http(s) URL or a
	// filesystem path.
	EntryURL string

	// Scope is the share scope the remote's init registers into.
	// Empty means share.DefaultScope.
	Scope string
}

// key is the descriptor's cache identity: two descriptors with the same
// name and entry URL refer to the same container load.
func (d Descriptor) key() string {
	return d.Name + "\n" + d.EntryURL
}

// scope returns the effective share scope.
func (d Descriptor) scope() string {
	if d.Scope == "" {
		return share.DefaultScope
	}
	return d.Scope
}
