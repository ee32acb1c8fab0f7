// Package server provides the HTTP server for the asset API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// UploadAssetRequest is the HTTP request body for uploading an asset.
type UploadAssetRequest struct {
	// FileName is the original filename; only its extension is kept.
	FileName string `json:"file_name" validate:"required,max=255"`
	// ContentType is the declared content type of the payload.
	ContentType string `json:"content_type" validate:"omitempty,max=255"`
	// DataBase64 is the base64-encoded file content.
	DataBase64 string `json:"data_base64" validate:"required,base64"`
}

// UploadAssetResponse is the HTTP response after a successful upload.
type UploadAssetResponse struct {
	// Key is the stored object key; the caller persists it as the asset reference.
	Key string `json:"key"`
	// URL is the public read URL for the stored object.
	URL string `json:"url"`
}

// AssetResponse is the HTTP response for asset metadata queries.
type AssetResponse struct {
	// Key is the stored object key.
	Key string `json:"key"`
	// URL is the public read URL.
	URL string `json:"url"`
	// ContentType is the content type declared at upload time.
	ContentType string `json:"content_type,omitempty"`
	// Exists reports whether the object is currently fetchable (advisory).
	Exists bool `json:"exists"`
	// SizeBytes is the object size, 0 when unknown (advisory).
	SizeBytes int64 `json:"size_bytes"`
	// UpdatedAt is when the asset last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
