package server

import (
	"log/slog"
	"net/http"
)

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /owners/{owner}/assets/{kind}", h.UploadAsset)
	mux.HandleFunc("GET /owners/{owner}/assets/{kind}", h.GetAsset)
	mux.HandleFunc("GET /owners/{owner}/assets/{kind}/content", h.GetAssetContent)
	mux.HandleFunc("DELETE /owners/{owner}/assets/{kind}", h.DeleteAsset)
	mux.HandleFunc("DELETE /owners/{owner}", h.DeleteOwner)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	return chain(mux)
}
