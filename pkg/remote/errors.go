// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"errors"
	"fmt"
)

// ErrRemoteLoad is the sentinel error wrapped by RemoteLoadError.
// ErrRemoteInit is the sentinel error wrapped by RemoteInitError.
// ErrModuleLoad is the sentinel error wrapped by ModuleLoadError.
var (
	ErrRemoteLoad = errors.New("remote entry load failed")
	ErrRemoteInit = errors.New("remote init failed")
	ErrModuleLoad = errors.New("exposed module load failed")
)

type (
	// RemoteLoadError is returned when a remote's entry point cannot be
	// fetched or parsed. A failed remote means every module it would have
	// exposed is unavailable, so this is always reported, never swallowed.
	RemoteLoadError struct {
		Name     string
		EntryURL string
		Cause    error
	}

	// RemoteInitError is returned when a fetched remote's init fails.
	RemoteInitError struct {
		Name  string
		Cause error
	}

	// ModuleLoadError is returned when one exposed module fails to evaluate.
	ModuleLoadError struct {
		Remote string
		Module string
		Cause  error
	}
)

// Error implements the error interface.
func (e *RemoteLoadError) Error() string {
	return fmt.Sprintf("remote %q: failed to load entry %s: %v", e.Name, e.EntryURL, e.Cause)
}

// Unwrap returns the underlying cause chained behind ErrRemoteLoad.
func (e *RemoteLoadError) Unwrap() []error { return []error{ErrRemoteLoad, e.Cause} }

// Error implements the error interface.
func (e *RemoteInitError) Error() string {
	return fmt.Sprintf("remote %q: init failed: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause chained behind ErrRemoteInit.
func (e *RemoteInitError) Unwrap() []error { return []error{ErrRemoteInit, e.Cause} }

// Error implements the error interface.
func (e *ModuleLoadError) Error() string {
	return fmt.Sprintf("remote %q: module %q failed to load: %v", e.Remote, e.Module, e.Cause)
}

// Unwrap returns the underlying cause chained behind ErrModuleLoad.
func (e *ModuleLoadError) Unwrap() []error { return []error{ErrModuleLoad, e.Cause} }
