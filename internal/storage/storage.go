// Package storage provides the file storage abstraction for uploaded assets.
// It defines the Backend interface (port) and two implementations: local disk
// for development and a Supabase Storage REST client for production.
package storage

import (
	"context"
	"io"
	"strings"
)

// Backend defines the capability contract every storage backend must satisfy.
// Callers hold keys only; a Backend never knows which entity owns a key.
type Backend interface {
	// Save persists the payload under key and returns the key actually used.
	// contentType may be empty; implementations fall back to a generic binary type.
	// Safe for concurrent use with distinct keys.
	Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Open returns the object content. The caller must close the returned
	// ReadCloser. Returns ErrNotFound if the key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether the object is fetchable. Advisory: a transport
	// failure degrades to false (logged), never to an error.
	Exists(ctx context.Context, key string) bool

	// Size returns the object size in bytes, or 0 when the size could not be
	// determined. Advisory: callers must not treat 0 as confirmed emptiness.
	Size(ctx context.Context, key string) int64

	// Delete removes the object. Deleting an already-absent key succeeds:
	// the caller's goal (key should not exist) is satisfied either way.
	// Returns ErrDeleteFailed only on a transport-level failure.
	Delete(ctx context.Context, key string) error

	// URL returns the public read URL for key. Pure, no I/O; stable even if
	// the object was deleted (the URL will simply 404 on fetch).
	URL(key string) string
}

// CleanKey normalizes a key for use as a flat object path: backslashes become
// forward slashes and any leading slash is stripped, so the key is never
// interpreted as an absolute path and never carries OS-specific separators.
func CleanKey(key string) string {
	return strings.TrimLeft(strings.ReplaceAll(key, `\`, "/"), "/")
}
