package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Compile-time check that LocalBackend implements Backend.
var _ Backend = (*LocalBackend)(nil)

// LocalBackend implements Backend on the local filesystem. It is the
// development/baseline backend; keys map to paths under a root directory
// using the same layout the remote backend uses, so switching backends never
// changes the key shape callers see.
type LocalBackend struct {
	root          string
	publicBaseURL string
}

// NewLocalBackend creates a LocalBackend rooted at root. The directory is
// created if it does not exist. publicBaseURL is the base under which stored
// objects are served for public reads.
func NewLocalBackend(root, publicBaseURL string) (*LocalBackend, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "narrapro-assets")
	}

	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &LocalBackend{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Root returns the root directory objects are stored under.
func (b *LocalBackend) Root() string {
	return b.root
}

// Save writes the payload to the path derived from key and returns the key.
func (b *LocalBackend) Save(ctx context.Context, key string, data io.Reader, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	clean := CleanKey(key)
	dst := b.path(clean)

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return "", fmt.Errorf("%w: create key directory: %v", ErrUploadFailed, err)
	}

	f, err := os.Create(dst) // #nosec G304 - key comes from the key generator
	if err != nil {
		return "", fmt.Errorf("%w: create file: %v", ErrUploadFailed, err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: write file: %v", ErrUploadFailed, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: close file: %v", ErrUploadFailed, err)
	}

	return clean, nil
}

// Open returns the object content. The caller must close the reader.
func (b *LocalBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.Open(b.path(CleanKey(key))) // #nosec G304 - key comes from the key generator
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}

	return f, nil
}

// Exists reports whether the object exists on disk.
func (b *LocalBackend) Exists(_ context.Context, key string) bool {
	info, err := os.Stat(b.path(CleanKey(key)))
	return err == nil && !info.IsDir()
}

// Size returns the object size in bytes, or 0 if it cannot be determined.
func (b *LocalBackend) Size(_ context.Context, key string) int64 {
	info, err := os.Stat(b.path(CleanKey(key)))
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}

// Delete removes the object. A missing file is success.
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	if err := os.Remove(b.path(CleanKey(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// URL builds the public read URL for key under the configured base URL.
func (b *LocalBackend) URL(key string) string {
	return b.publicBaseURL + "/" + CleanKey(key)
}

// path maps a cleaned key to its location under the root directory.
func (b *LocalBackend) path(cleanKey string) string {
	return filepath.Join(b.root, filepath.FromSlash(cleanKey))
}
