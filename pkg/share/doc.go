// SPDX-License-Identifier: MPL-2.0

// Package share implements shared-dependency declaration parsing and the
// runtime shared-scope registry for federated containers.
//
// At build time, Parse normalizes a user's shared-dependency declaration
// (bare specifiers, version ranges, or per-key options records) into
// canonical entries, from which NewProvideRegistry and NewConsumeRegistry
// derive the provide and consume sides handed to the bundler.
//
// At run time, each container's init appends its provided instances into a
// ScopeRegistry, and a Resolver answers consumption requests: it filters
// registered instances by the required version range, enforces singleton
// constraints, and either selects the highest satisfying version or directs
// the consumer to its bundled fallback copy. Strictness decides whether an
// unsatisfiable request is an error or a logged warning.
package share
