// SPDX-License-Identifier: MPL-2.0

// universe validates federation manifests, simulates shared-dependency
// resolution, and preloads remote modules into a local cache.
package main

func main() {
	Execute()
}
