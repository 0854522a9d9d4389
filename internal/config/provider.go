// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit manifest loading inputs.
type LoadOptions struct {
	// ManifestFilePath forces loading from a specific manifest file when set.
	ManifestFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// Provider loads the federation manifest from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Manifest, error)
}

type fileProvider struct{}

// NewProvider creates a manifest provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads the manifest from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Manifest, error) {
	m, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return m, nil
}
