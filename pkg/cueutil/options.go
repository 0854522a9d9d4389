// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the default upper bound on a parsed CUE file (1 MB).
// Federation manifests are small; anything larger is almost certainly a
// mistake or an attack.
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Option configures a parse operation.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMaxFileSize overrides the file-size guard.
func WithMaxFileSize(max int64) Option {
	return func(o *options) {
		o.maxFileSize = max
	}
}

// WithConcrete controls whether validation requires concrete values.
// Defaults to true; disable for schemas with intentionally open fields.
func WithConcrete(concrete bool) Option {
	return func(o *options) {
		o.concrete = concrete
	}
}
