package web

import (
	"log/slog"
	"net/http"
)

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := LandingPage(s.service.HasRowStore(), s.cfg.SQL.ExecEnabled).Render(r.Context(), w); err != nil {
		slog.Error("render landing page", "error", err)
	}
}

// handleHealth reports service status and row store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Health(r.Context()))
}
