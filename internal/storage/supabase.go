package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Static errors for Supabase backend construction. Missing configuration is
// fatal at startup, never deferred to the first upload.
var (
	// ErrProjectURLRequired is returned when the Supabase project URL is not provided.
	ErrProjectURLRequired = errors.New("storage: supabase project URL is required")
	// ErrServiceKeyRequired is returned when the service role key is not provided.
	ErrServiceKeyRequired = errors.New("storage: supabase service key is required")
	// ErrBucketRequired is returned when the bucket name is not provided.
	ErrBucketRequired = errors.New("storage: supabase bucket name is required")
)

// defaultContentType is used when the caller declared no content type.
const defaultContentType = "application/octet-stream"

// Compile-time check that SupabaseBackend implements Backend.
var _ Backend = (*SupabaseBackend)(nil)

// SupabaseBackend implements Backend against the Supabase Storage REST API.
// It talks to the /storage/v1 surface directly over HTTP rather than through
// an SDK. Object writes and deletes go to the authenticated object endpoint;
// public reads and existence probes use the unauthenticated public path.
//
// The accepted upload method differs across Supabase deployments and there is
// no capability-discovery endpoint cheaper than trying, so Save probes POST
// first and retries the identical payload with PUT before giving up.
type SupabaseBackend struct {
	apiBase    string
	bucket     string
	serviceKey string

	httpClient    *http.Client
	logger        *slog.Logger
	uploadTimeout time.Duration
	objectTimeout time.Duration
	probeTimeout  time.Duration
}

// SupabaseOption is a function that configures a SupabaseBackend.
type SupabaseOption func(*SupabaseBackend)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) SupabaseOption {
	return func(b *SupabaseBackend) {
		b.httpClient = c
	}
}

// WithLogger sets the logger used for advisory-failure diagnostics.
func WithLogger(l *slog.Logger) SupabaseOption {
	return func(b *SupabaseBackend) {
		b.logger = l
	}
}

// WithUploadTimeout bounds a single Save call, covering both method attempts.
func WithUploadTimeout(d time.Duration) SupabaseOption {
	return func(b *SupabaseBackend) {
		b.uploadTimeout = d
	}
}

// WithObjectTimeout bounds a single Open or Delete call.
func WithObjectTimeout(d time.Duration) SupabaseOption {
	return func(b *SupabaseBackend) {
		b.objectTimeout = d
	}
}

// WithProbeTimeout bounds a single Exists or Size probe.
func WithProbeTimeout(d time.Duration) SupabaseOption {
	return func(b *SupabaseBackend) {
		b.probeTimeout = d
	}
}

// NewSupabaseBackend creates a backend for the given Supabase project.
// projectURL is the project base URL (e.g. https://xyz.supabase.co),
// serviceKey is the service role key used for authenticated object calls,
// and bucket is the storage bucket objects live in.
func NewSupabaseBackend(projectURL, serviceKey, bucket string, opts ...SupabaseOption) (*SupabaseBackend, error) {
	if projectURL == "" {
		return nil, ErrProjectURLRequired
	}
	if serviceKey == "" {
		return nil, ErrServiceKeyRequired
	}
	if bucket == "" {
		return nil, ErrBucketRequired
	}

	b := &SupabaseBackend{
		apiBase:       strings.TrimRight(projectURL, "/") + "/storage/v1",
		bucket:        bucket,
		serviceKey:    serviceKey,
		httpClient:    &http.Client{},
		logger:        slog.Default(),
		uploadTimeout: 60 * time.Second,
		objectTimeout: 30 * time.Second,
		probeTimeout:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Save uploads the payload under key. It attempts POST first; if the response
// is not 200/201 it retries the identical payload with PUT against the same
// URL. The two attempts are probes of two accepted protocols, not retries:
// a failure on both is reported as one upload failure and is not retried
// further by this layer.
func (b *SupabaseBackend) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	clean := CleanKey(key)

	// Both attempts need the full payload.
	payload, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("%w: read payload: %v", ErrUploadFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.uploadTimeout)
	defer cancel()

	url := b.objectURL(clean)

	postStatus, postErr := b.upload(ctx, http.MethodPost, url, payload, contentType)
	if postErr == nil && uploadAccepted(postStatus) {
		return clean, nil
	}

	b.logger.Debug("upload POST rejected, probing PUT",
		slog.String("key", clean),
		slog.Int("status", postStatus),
	)

	putStatus, putErr := b.upload(ctx, http.MethodPut, url, payload, contentType)
	if putErr == nil && uploadAccepted(putStatus) {
		return clean, nil
	}

	return "", fmt.Errorf("%w: POST %s, PUT %s",
		ErrUploadFailed, attemptOutcome(postStatus, postErr), attemptOutcome(putStatus, putErr))
}

// upload performs a single upload attempt and returns the response status.
func (b *SupabaseBackend) upload(ctx context.Context, method, url string, payload []byte, contentType string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	b.setAuthHeaders(req)
	req.Header.Set("Content-Type", contentType)
	// Objects are immutable once written (keys are never reused for a
	// different payload), so let the CDN cache them.
	req.Header.Set("Cache-Control", "max-age=86400")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// Open fetches the object content from its public URL. The caller must close
// the returned ReadCloser.
func (b *SupabaseBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, b.objectTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.URL(key), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetch object: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}, nil
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		cancel()
		return nil, ErrNotFound
	default:
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("fetch object: unexpected status %d", resp.StatusCode)
	}
}

// Exists probes the public URL with a HEAD request. A confirmed 404 is false;
// a transport failure or unexpected status means the existence is unknown and
// degrades to false, with the distinction logged for operators.
func (b *SupabaseBackend) Exists(ctx context.Context, key string) bool {
	status, err := b.probe(ctx, key)
	switch {
	case err == nil && status == http.StatusOK:
		return true
	case err == nil && status == http.StatusNotFound:
		return false
	default:
		b.logExistenceUnknown("exists", key, status, err)
		return false
	}
}

// Size probes the public URL with a HEAD request and returns Content-Length.
// Any failure to retrieve the header degrades to 0 (size unknown).
func (b *SupabaseBackend) Size(ctx context.Context, key string) int64 {
	status, size, err := b.probeSize(ctx, key)
	if err != nil || status != http.StatusOK {
		if err != nil || status != http.StatusNotFound {
			b.logExistenceUnknown("size", key, status, err)
		}
		return 0
	}
	return size
}

// Delete issues an authenticated delete against the object endpoint. 200 and
// 204 are success; so is 404, because the key is already absent. Any other
// outcome is a DeleteFailed.
func (b *SupabaseBackend) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, b.objectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.objectURL(CleanKey(key)), nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrDeleteFailed, err)
	}
	b.setAuthHeaders(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrDeleteFailed, resp.StatusCode)
	}
}

// URL returns the public, unauthenticated read URL for key. Distinct from the
// authenticated object path used for writes and deletes.
func (b *SupabaseBackend) URL(key string) string {
	return b.apiBase + "/object/public/" + b.bucket + "/" + CleanKey(key)
}

// objectURL returns the authenticated object endpoint for a cleaned key.
func (b *SupabaseBackend) objectURL(cleanKey string) string {
	return b.apiBase + "/object/" + b.bucket + "/" + cleanKey
}

// setAuthHeaders attaches the bearer credential and the Supabase apikey
// header. These never vary per request.
func (b *SupabaseBackend) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.serviceKey)
	req.Header.Set("apikey", b.serviceKey)
}

// probe HEADs the public URL and returns the response status.
func (b *SupabaseBackend) probe(ctx context.Context, key string) (int, error) {
	status, _, err := b.probeSize(ctx, key)
	return status, err
}

// probeSize HEADs the public URL and returns the status and Content-Length.
func (b *SupabaseBackend) probeSize(ctx context.Context, key string) (int, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, b.URL(key), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("probe failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	size, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	return resp.StatusCode, size, nil
}

// logExistenceUnknown records that a probe could not determine whether the
// object exists, as opposed to confirming its absence. Operators use this to
// tell "the object store is down" apart from "the object is gone".
func (b *SupabaseBackend) logExistenceUnknown(op, key string, status int, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.String("key", CleanKey(key)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	} else {
		attrs = append(attrs, slog.Int("status", status))
	}
	b.logger.Warn("object existence unknown, degrading to absent", attrs...)
}

// uploadAccepted reports whether an upload attempt's status means success.
func uploadAccepted(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}

// attemptOutcome formats one upload attempt's result for the failure message.
func attemptOutcome(status int, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("status %d", status)
}

// cancelReadCloser releases the request's timeout context when the body is
// closed, keeping the read bounded by the operation timeout.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
