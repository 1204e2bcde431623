package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"browser_library/domain/entities"

	"github.com/go-chi/chi/v5"
)

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type keywordListResponse struct {
	Keywords []string `json:"keywords"`
}

type keywordResponse struct {
	Name  string   `json:"name"`
	Group string   `json:"group"`
	Args  []string `json:"args"`
	Doc   string   `json:"doc"`
}

type runRequest struct {
	Name      string                 `json:"name"`
	Args      []interface{}          `json:"args"`
	Kwargs    map[string]interface{} `json:"kwargs"`
	Variables map[string]string      `json:"variables"`
}

type runResponse struct {
	Status string      `json:"status"`
	Return interface{} `json:"return,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, keywordListResponse{Keywords: s.library.KeywordNames()})
}

func (s *Server) handleGetKeyword(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	kw, ok := s.library.Keyword(name)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("keyword '%s' not found", name)})
		return
	}
	s.writeJSON(w, http.StatusOK, keywordResponse{
		Name:  kw.Name,
		Group: kw.Group,
		Args:  kw.Signature(),
		Doc:   kw.Doc,
	})
}

// handleRun runs one keyword. Keyword failures are reported with status 200
// and "FAIL"; only requests that cannot be understood get an error status.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty request body")
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: name is required"})
		return
	}

	if len(req.Variables) > 0 && s.variables != nil {
		s.variables.SetAll(req.Variables)
	}

	start := time.Now()
	result, err := s.library.RunKeyword(r.Context(), req.Name, req.Args, req.Kwargs)
	took := time.Since(start)

	label := unmatched
	if kw, ok := s.library.Keyword(req.Name); ok {
		label = kw.Name
	}

	if err != nil {
		observeKeyword(label, string(entities.StatusFail), took)
		s.writeJSON(w, http.StatusOK, runResponse{
			Status: string(entities.StatusFail),
			Error:  err.Error(),
			Kind:   entities.ErrorKind(err),
		})
		return
	}

	observeKeyword(label, string(entities.StatusPass), took)
	s.writeJSON(w, http.StatusOK, runResponse{
		Status: string(entities.StatusPass),
		Return: result,
	})
}
