package storage

import "errors"

// Static errors shared by all backends.
var (
	// ErrNotFound is returned by Open when the key does not exist.
	ErrNotFound = errors.New("storage: object not found")
	// ErrUploadFailed is returned by Save when the payload could not be persisted.
	ErrUploadFailed = errors.New("storage: upload failed")
	// ErrDeleteFailed is returned by Delete on a transport-level failure.
	ErrDeleteFailed = errors.New("storage: delete failed")
)
