// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// maxFetchBytes is the upper bound on a fetched entry or module payload
	// (10 MB). Prevents unbounded memory consumption from malicious or
	// malformed responses.
	maxFetchBytes = 10 << 20

	// defaultFetchTimeout bounds a single fetch when the caller's context
	// carries no deadline of its own.
	defaultFetchTimeout = 30 * time.Second
)

// Fetcher retrieves raw bytes for an entry-point or module location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// EntryFetcher fetches remote content over HTTP, and falls back to the
// local filesystem for bare paths, so a remote map may mix served and
// on-disk containers.
type EntryFetcher struct {
	client *http.Client
}

// NewEntryFetcher creates a fetcher with a default HTTP client.
func NewEntryFetcher() *EntryFetcher {
	return &EntryFetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// NewEntryFetcherWithClient creates a fetcher using the provided client.
// Intended for tests and hosts that need custom transports.
func NewEntryFetcherWithClient(client *http.Client) *EntryFetcher {
	return &EntryFetcher{client: client}
}

// Fetch retrieves the bytes at location, enforcing the response size cap.
func (f *EntryFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if isHTTP(location) {
		return f.fetchHTTP(ctx, location)
	}
	return readFileCapped(location)
}

func (f *EntryFetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned status %d", rawURL, resp.StatusCode)
	}

	// Read one byte past the cap so an oversized payload is detected
	// instead of silently truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", rawURL, maxFetchBytes)
	}

	return data, nil
}

func readFileCapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFetchBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", path, maxFetchBytes)
	}
	return os.ReadFile(path)
}

// isHTTP reports whether a location is an http(s) URL rather than a
// filesystem path.
func isHTTP(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// resolveRef resolves a module reference relative to the entry location it
// was declared in. HTTP entries resolve by URL; filesystem entries resolve
// against the entry file's directory. Absolute references pass through.
func resolveRef(entryLocation, ref string) (string, error) {
	if isHTTP(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}
	if isHTTP(entryLocation) {
		base, err := url.Parse(entryLocation)
		if err != nil {
			return "", fmt.Errorf("invalid entry URL %s: %w", entryLocation, err)
		}
		resolved, err := base.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("invalid module reference %s: %w", ref, err)
		}
		return resolved.String(), nil
	}
	return filepath.Join(filepath.Dir(entryLocation), ref), nil
}
