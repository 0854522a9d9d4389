// SPDX-License-Identifier: MPL-2.0

// Package remote loads federated remote containers and bulk-materializes
// the modules they expose.
//
// A Descriptor names a remote and locates its entry manifest (an http(s)
// URL or a filesystem path). Registry.Resolve fetches the entry,
// instantiates the container, and runs its init into the shared-scope
// registry, exactly once per descriptor no matter how many callers race.
// The load is a first-writer-wins promise cached for the registry's
// lifetime, and an abandoned wait never cancels the in-flight load.
//
// BulkLoad sweeps a whole remote map: every remote resolves concurrently,
// every exposed module is enumerated and forcibly loaded, and failures are
// collected per entry instead of aborting the sweep, so an app shell can
// decide whether partial offline coverage is acceptable.
package remote
