package api

import (
	"net/http"

	"github.com/dgallion1/docbrief/internal/exemplar"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.model,
		"stats": s.stats.Snapshot(),
	})
}

func (s *Server) handleListExemplars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"exemplars": exemplar.Names(),
		"default":   exemplar.FallbackPreset,
	})
}
