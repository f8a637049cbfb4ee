package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docbrief/internal/evaluate"
	"github.com/dgallion1/docbrief/internal/layout"
	"github.com/dgallion1/docbrief/internal/llm"
	"github.com/dgallion1/docbrief/internal/pipeline"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a pipeline or evaluation error to a response code: 4xx
// for bad input, 502 when an upstream service failed, 500 otherwise.
func statusFor(err error) int {
	var (
		statusErr *llm.StatusError
		failure   *pipeline.Failure
	)
	switch {
	case errors.Is(err, layout.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, evaluate.ErrEmptyExemplar):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	case errors.Is(err, evaluate.ErrMalformedScore):
		return http.StatusBadGateway
	case errors.As(err, &failure):
		switch failure.Stage {
		case pipeline.StageExtract, pipeline.StageSummarize, pipeline.StageClassify, pipeline.StageSynthesize, pipeline.StageEvaluate:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}
