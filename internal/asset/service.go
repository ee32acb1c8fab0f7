package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/narrapro/asset-api/internal/storage"
	"github.com/narrapro/asset-api/internal/storage/key"
)

// Service orchestrates asset uploads, reads and removals across the
// reference repository and the storage backends.
type Service struct {
	repo     Repository
	selector *storage.Selector
	logger   *slog.Logger
}

// NewService creates a new asset Service.
func NewService(repo Repository, selector *storage.Selector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		selector: selector,
		logger:   logger,
	}
}

// UploadInput carries one upload request. It exists only for the duration of
// a single Upload call; the payload is never persisted outside the backend.
type UploadInput struct {
	// Owner is the identifier of the entity receiving the asset.
	Owner string
	// Kind is the asset kind being uploaded.
	Kind Kind
	// Filename is the original filename, used only to derive an extension.
	Filename string
	// ContentType is the declared content type; may be empty.
	ContentType string
	// Data is the raw payload.
	Data io.Reader
}

// Info describes an owner's asset for read-style queries. Exists and
// SizeBytes are advisory: a transport failure on the backend degrades them
// to false/0 rather than failing the query.
type Info struct {
	Reference
	// URL is the public read URL for the object.
	URL string
	// Exists reports whether the object is currently fetchable.
	Exists bool
	// SizeBytes is the object size, or 0 when it could not be determined.
	SizeBytes int64
}

// Upload stores a new object for the owner and persists the reference.
// A fresh key is generated for every upload; when the owner already held an
// asset of this kind, the old object is deleted only after the new upload
// succeeded and the reference was replaced, so a failed upload never loses
// the previously stored asset.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Reference, error) {
	if !in.Kind.IsValid() {
		return Reference{}, ErrUnknownKind
	}

	prev, prevErr := s.repo.Find(ctx, in.Owner, in.Kind)

	backend := s.selector.BackendFor(in.Kind.Namespace())
	objectKey := key.Generate(in.Kind.Namespace(), in.Owner, in.Filename)

	storedKey, err := backend.Save(ctx, objectKey, in.Data, in.ContentType)
	if err != nil {
		return Reference{}, fmt.Errorf("save object: %w", err)
	}

	now := time.Now()
	ref := Reference{
		Owner:       in.Owner,
		Kind:        in.Kind,
		Key:         storedKey,
		ContentType: in.ContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prevErr == nil {
		ref.CreatedAt = prev.CreatedAt
	}

	if err := s.repo.Save(ctx, ref); err != nil {
		return Reference{}, fmt.Errorf("save reference: %w", err)
	}

	// The replaced object is removed best-effort; the new reference is
	// already in place and an orphaned old object is harmless.
	if prevErr == nil && prev.Key != storedKey {
		if err := backend.Delete(ctx, prev.Key); err != nil {
			s.logger.Warn("failed to delete replaced object",
				slog.String("owner", in.Owner),
				slog.String("kind", string(in.Kind)),
				slog.String("key", prev.Key),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("asset uploaded",
		slog.String("owner", in.Owner),
		slog.String("kind", string(in.Kind)),
		slog.String("key", storedKey),
	)

	return ref, nil
}

// URL returns the public read URL for a stored key of the given kind.
// Pure, no I/O: the URL is derivable from the key and backend configuration
// alone, and stays stable even after the object is deleted.
func (s *Service) URL(kind Kind, key string) string {
	return s.selector.BackendFor(kind.Namespace()).URL(key)
}

// Get returns the owner's reference for a kind together with its public URL
// and advisory existence/size information.
func (s *Service) Get(ctx context.Context, owner string, kind Kind) (Info, error) {
	ref, err := s.repo.Find(ctx, owner, kind)
	if err != nil {
		return Info{}, err
	}

	backend := s.selector.BackendFor(kind.Namespace())
	return Info{
		Reference: ref,
		URL:       backend.URL(ref.Key),
		Exists:    backend.Exists(ctx, ref.Key),
		SizeBytes: backend.Size(ctx, ref.Key),
	}, nil
}

// Open streams the owner's asset content. The caller must close the reader.
func (s *Service) Open(ctx context.Context, owner string, kind Kind) (io.ReadCloser, Reference, error) {
	ref, err := s.repo.Find(ctx, owner, kind)
	if err != nil {
		return nil, Reference{}, err
	}

	rc, err := s.selector.BackendFor(kind.Namespace()).Open(ctx, ref.Key)
	if err != nil {
		return nil, Reference{}, fmt.Errorf("open object: %w", err)
	}

	return rc, ref, nil
}

// Remove deletes the owner's asset of the given kind: the object first, then
// the reference. An already-absent object counts as deleted; a transport
// failure keeps the reference so the asset is not orphaned remotely.
func (s *Service) Remove(ctx context.Context, owner string, kind Kind) error {
	ref, err := s.repo.Find(ctx, owner, kind)
	if err != nil {
		return err
	}

	backend := s.selector.BackendFor(kind.Namespace())
	if err := backend.Delete(ctx, ref.Key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if err := s.repo.Delete(ctx, owner, kind); err != nil {
		return fmt.Errorf("delete reference: %w", err)
	}

	s.logger.Info("asset removed",
		slog.String("owner", owner),
		slog.String("kind", string(kind)),
		slog.String("key", ref.Key),
	)

	return nil
}

// RemoveOwner is the entity-deletion hook: it deletes every asset the owner
// holds. Already-absent objects are tolerated, and cleanup continues past
// individual failures, returning the first error encountered.
func (s *Service) RemoveOwner(ctx context.Context, owner string) error {
	refs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}

	var firstErr error
	for _, ref := range refs {
		backend := s.selector.BackendFor(ref.Kind.Namespace())
		if err := backend.Delete(ctx, ref.Key); err != nil {
			s.logger.Warn("failed to delete object during owner cleanup",
				slog.String("owner", owner),
				slog.String("key", ref.Key),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.repo.Delete(ctx, owner, ref.Kind); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
