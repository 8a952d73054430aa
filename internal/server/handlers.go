package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/askql/internal/engine"
	"github.com/leapstack-labs/askql/internal/sandbox"
)

// askRequest is the inbound body for POST /ask.
type askRequest struct {
	Query string `json:"query"`
}

// askResponse is the success body for POST /ask.
type askResponse struct {
	Success bool             `json:"success"`
	ID      string           `json:"id"`
	Result  *sandbox.Outcome `json:"result"`
	Code    string           `json:"generated_code"`
	Query   string           `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no query provided"})
		return
	}

	id := uuid.NewString()
	answer, err := s.engine.Ask(r.Context(), req.Query)
	if err != nil {
		status, msg := classifyError(err)
		s.logger.Warn("query failed", "id", id, "status", status, "error", msg)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	s.logger.Info("query answered", "id", id, "kind", answer.Outcome.Kind)
	writeJSON(w, http.StatusOK, askResponse{
		Success: true,
		ID:      id,
		Result:  answer.Outcome,
		Code:    answer.Code,
		Query:   answer.Query,
	})
}

func (s *Server) handleDataInfo(w http.ResponseWriter, _ *http.Request) {
	data := s.engine.Dataset()
	if data == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: engine.ErrNoDataset.Error()})
		return
	}
	writeJSON(w, http.StatusOK, data.Describe(s.dateColumn))
}

// classifyError maps pipeline errors onto HTTP statuses. Messages carry the
// taxonomy category but never raw internal state.
func classifyError(err error) (int, string) {
	var vErr *engine.ValidationError
	switch {
	case errors.Is(err, engine.ErrEmptyQuery):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, vErr.Error()
	case errors.Is(err, sandbox.ErrMissingResult):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
