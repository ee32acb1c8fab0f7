package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/narrapro/asset-api/internal/asset"
	"github.com/narrapro/asset-api/internal/storage"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *asset.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *asset.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// UploadAsset handles POST /owners/{owner}/assets/{kind} requests.
func (h *Handlers) UploadAsset(w http.ResponseWriter, r *http.Request) {
	owner, kind, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}

	var req UploadAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.DataBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data_base64 is not valid base64", "INVALID_BASE64")
		return
	}

	ref, err := h.service.Upload(r.Context(), asset.UploadInput{
		Owner:       owner,
		Kind:        kind,
		Filename:    req.FileName,
		ContentType: req.ContentType,
		Data:        bytes.NewReader(payload),
	})
	if err != nil {
		h.logger.Error("upload failed",
			slog.String("owner", owner),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		// Retryable for the caller; the previously stored asset is untouched.
		writeError(w, http.StatusBadGateway, "upload failed, please try again", "UPLOAD_FAILED")
		return
	}

	writeJSON(w, http.StatusCreated, UploadAssetResponse{
		Key: ref.Key,
		URL: h.service.URL(kind, ref.Key),
	})
}

// GetAsset handles GET /owners/{owner}/assets/{kind} requests.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	owner, kind, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}

	info, err := h.service.Get(r.Context(), owner, kind)
	if err != nil {
		if errors.Is(err, asset.ErrReferenceNotFound) {
			writeError(w, http.StatusNotFound, "asset not found", "ASSET_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get asset",
			slog.String("owner", owner),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get asset", "ASSET_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, AssetResponse{
		Key:         info.Key,
		URL:         info.URL,
		ContentType: info.ContentType,
		Exists:      info.Exists,
		SizeBytes:   info.SizeBytes,
		UpdatedAt:   info.UpdatedAt,
	})
}

// GetAssetContent handles GET /owners/{owner}/assets/{kind}/content requests.
func (h *Handlers) GetAssetContent(w http.ResponseWriter, r *http.Request) {
	owner, kind, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}

	rc, ref, err := h.service.Open(r.Context(), owner, kind)
	if err != nil {
		if errors.Is(err, asset.ErrReferenceNotFound) || errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "asset not found", "ASSET_NOT_FOUND")
			return
		}
		h.logger.Error("failed to open asset",
			slog.String("owner", owner),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to fetch asset content", "ASSET_FETCH_FAILED")
		return
	}
	defer func() { _ = rc.Close() }()

	contentType := ref.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("streaming asset content interrupted",
			slog.String("owner", owner),
			slog.String("key", ref.Key),
			slog.String("error", err.Error()),
		)
	}
}

// DeleteAsset handles DELETE /owners/{owner}/assets/{kind} requests.
func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	owner, kind, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), owner, kind); err != nil {
		if errors.Is(err, asset.ErrReferenceNotFound) {
			writeError(w, http.StatusNotFound, "asset not found", "ASSET_NOT_FOUND")
			return
		}
		h.logger.Error("failed to delete asset",
			slog.String("owner", owner),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to delete asset", "ASSET_DELETE_FAILED")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteOwner handles DELETE /owners/{owner} requests. It is the lifecycle
// hook called when an owning entity is removed: every asset the owner holds
// is deleted, and already-absent objects are tolerated.
func (h *Handlers) DeleteOwner(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner is required", "MISSING_OWNER")
		return
	}

	if err := h.service.RemoveOwner(r.Context(), owner); err != nil {
		h.logger.Error("owner cleanup incomplete",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "owner cleanup incomplete", "OWNER_CLEANUP_FAILED")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathIdentity extracts and validates the {owner} and {kind} path values,
// writing the error response itself when they are invalid.
func (h *Handlers) pathIdentity(w http.ResponseWriter, r *http.Request) (string, asset.Kind, bool) {
	owner := r.PathValue("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner is required", "MISSING_OWNER")
		return "", "", false
	}

	kind, err := asset.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown asset kind", "UNKNOWN_KIND")
		return "", "", false
	}

	return owner, kind, true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
