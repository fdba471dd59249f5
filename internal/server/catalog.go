package server

import (
	"log/slog"
	"net/http"

	"github.com/SLASHOO/SkyMotion-Library/internal/httputil"
)

// handleCatalog serves the video index from object storage. A stored
// document that is not an array is served as an empty catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	videos, err := s.catalogSource.Load(r.Context())
	if err != nil {
		slog.Error("catalog: load failed", "error", err)
		httputil.WriteError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	httputil.WriteJSON(w, http.StatusOK, videos)
}
