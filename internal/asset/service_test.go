package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narrapro/asset-api/internal/storage"
)

// stubBackend is an in-memory Backend recording deletes, with injectable
// failures for Save and Delete.
type stubBackend struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

var _ storage.Backend = (*stubBackend)(nil)

func newStubBackend() *stubBackend {
	return &stubBackend{objects: make(map[string][]byte)}
}

func (b *stubBackend) Save(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	if b.saveErr != nil {
		return "", b.saveErr
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = payload
	return key, nil
}

func (b *stubBackend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *stubBackend) Exists(_ context.Context, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *stubBackend) Size(_ context.Context, key string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.objects[key]))
}

func (b *stubBackend) Delete(_ context.Context, key string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *stubBackend) URL(key string) string {
	return "https://cdn.test/" + key
}

func newTestService(backend storage.Backend) (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo, storage.NewSelector(backend), nil), repo
}

func TestService_Upload(t *testing.T) {
	backend := newStubBackend()
	svc, _ := newTestService(backend)

	ref, err := svc.Upload(context.Background(), UploadInput{
		Owner:       "42",
		Kind:        KindProfilePicture,
		Filename:    "avatar.PNG",
		ContentType: "image/png",
		Data:        bytes.NewReader([]byte("avatar bytes")),
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^profile_pictures/42/[0-9a-f]{32}\.png$`), ref.Key)
	assert.Equal(t, "42", ref.Owner)
	assert.Equal(t, "image/png", ref.ContentType)
	assert.True(t, backend.Exists(context.Background(), ref.Key))
}

func TestService_Upload_UnknownKind(t *testing.T) {
	svc, _ := newTestService(newStubBackend())

	_, err := svc.Upload(context.Background(), UploadInput{
		Owner:    "42",
		Kind:     Kind("banner"),
		Filename: "x.png",
		Data:     bytes.NewReader(nil),
	})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestService_Upload_ReplaceDeletesOldObject(t *testing.T) {
	backend := newStubBackend()
	svc, _ := newTestService(backend)
	ctx := context.Background()

	first, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "old.png",
		Data: bytes.NewReader([]byte("old")),
	})
	require.NoError(t, err)

	second, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "new.png",
		Data: bytes.NewReader([]byte("new")),
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key, "keys are never reused")
	assert.Contains(t, backend.deleted, first.Key, "replaced object should be deleted")
	assert.False(t, backend.Exists(ctx, first.Key))
	assert.True(t, backend.Exists(ctx, second.Key))
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "replacement keeps the original creation time")
}

func TestService_Upload_FailureKeepsPreviousAsset(t *testing.T) {
	backend := newStubBackend()
	svc, repo := newTestService(backend)
	ctx := context.Background()

	first, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "old.png",
		Data: bytes.NewReader([]byte("old")),
	})
	require.NoError(t, err)

	backend.saveErr = storage.ErrUploadFailed
	_, err = svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "new.png",
		Data: bytes.NewReader([]byte("new")),
	})
	assert.ErrorIs(t, err, storage.ErrUploadFailed)

	// The old reference and object must survive a failed replacement.
	got, err := repo.Find(ctx, "42", KindProfilePicture)
	require.NoError(t, err)
	assert.Equal(t, first.Key, got.Key)
	assert.True(t, backend.Exists(ctx, first.Key))
}

func TestService_Get(t *testing.T) {
	backend := newStubBackend()
	svc, _ := newTestService(backend)
	ctx := context.Background()

	ref, err := svc.Upload(ctx, UploadInput{
		Owner: "9", Kind: KindEventCover, Filename: "cover.jpg",
		ContentType: "image/jpeg",
		Data:        bytes.NewReader([]byte("cover bytes")),
	})
	require.NoError(t, err)

	info, err := svc.Get(ctx, "9", KindEventCover)
	require.NoError(t, err)
	assert.Equal(t, ref.Key, info.Key)
	assert.Equal(t, "https://cdn.test/"+ref.Key, info.URL)
	assert.True(t, info.Exists)
	assert.Equal(t, int64(len("cover bytes")), info.SizeBytes)

	_, err = svc.Get(ctx, "9", KindProfilePicture)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestService_Open(t *testing.T) {
	backend := newStubBackend()
	svc, _ := newTestService(backend)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "a.png",
		ContentType: "image/png",
		Data:        bytes.NewReader([]byte("payload")),
	})
	require.NoError(t, err)

	rc, ref, err := svc.Open(ctx, "42", KindProfilePicture)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
	assert.Equal(t, "image/png", ref.ContentType)
}

func TestService_Remove(t *testing.T) {
	backend := newStubBackend()
	svc, repo := newTestService(backend)
	ctx := context.Background()

	ref, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "a.png",
		Data: bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "42", KindProfilePicture))
	assert.False(t, backend.Exists(ctx, ref.Key))

	_, err = repo.Find(ctx, "42", KindProfilePicture)
	assert.ErrorIs(t, err, ErrReferenceNotFound)

	// Removing again reports the reference as gone.
	assert.ErrorIs(t, svc.Remove(ctx, "42", KindProfilePicture), ErrReferenceNotFound)
}

func TestService_Remove_TransportFailureKeepsReference(t *testing.T) {
	backend := newStubBackend()
	svc, repo := newTestService(backend)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "a.png",
		Data: bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)

	backend.deleteErr = storage.ErrDeleteFailed
	err = svc.Remove(ctx, "42", KindProfilePicture)
	assert.ErrorIs(t, err, storage.ErrDeleteFailed)

	// The reference stays so the remote object is not orphaned.
	_, err = repo.Find(ctx, "42", KindProfilePicture)
	assert.NoError(t, err)
}

func TestService_RemoveOwner(t *testing.T) {
	backend := newStubBackend()
	svc, repo := newTestService(backend)
	ctx := context.Background()

	pic, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "a.png",
		Data: bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)

	cover, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindEventCover, Filename: "b.jpg",
		Data: bytes.NewReader([]byte("y")),
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveOwner(ctx, "42"))

	assert.False(t, backend.Exists(ctx, pic.Key))
	assert.False(t, backend.Exists(ctx, cover.Key))

	refs, err := repo.ListByOwner(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, refs)

	// Cleanup of an owner with nothing stored is a no-op.
	assert.NoError(t, svc.RemoveOwner(ctx, "42"))
}

func TestService_URL(t *testing.T) {
	svc, _ := newTestService(newStubBackend())

	got := svc.URL(KindProfilePicture, "profile_pictures/42/token.png")
	assert.Equal(t, "https://cdn.test/profile_pictures/42/token.png", got)
}

func TestService_RemoveOwner_ContinuesPastFailures(t *testing.T) {
	backend := newStubBackend()
	svc, _ := newTestService(backend)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{
		Owner: "42", Kind: KindProfilePicture, Filename: "a.png",
		Data: bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)

	backend.deleteErr = storage.ErrDeleteFailed
	err = svc.RemoveOwner(ctx, "42")
	assert.True(t, errors.Is(err, storage.ErrDeleteFailed))
}
