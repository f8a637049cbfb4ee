package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docbrief/internal/document"
	"github.com/dgallion1/docbrief/internal/exemplar"
)

type evaluateRequest struct {
	Generated   *document.GeneratedDocument `json:"generated"`
	Exemplar    json.RawMessage             `json:"exemplar,omitempty"`
	SummaryType string                      `json:"summary_type,omitempty"`
}

// handleEvaluate scores a generated document against an inline exemplar or
// a preset named by summary_type.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Generated == nil {
		jsonError(w, "generated is required", http.StatusBadRequest)
		return
	}

	ex := exemplar.Lookup(req.SummaryType)
	if len(req.Exemplar) > 0 && string(req.Exemplar) != "null" {
		parsed, err := exemplar.LoadJSON(bytes.NewReader(req.Exemplar), s.categories)
		if err != nil {
			jsonError(w, "invalid exemplar: "+err.Error(), http.StatusBadRequest)
			return
		}
		ex = parsed
	}

	ctx := r.Context()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}
	res, err := s.orchestrator.Evaluator().Compare(ctx, req.Generated, ex)
	if err != nil {
		s.log.Error("evaluation failed", "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
