package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"mailcraft/internal/util"
)

// Completer produces a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Server exposes the relay endpoint.
type Server struct {
	completer Completer
	mux       *http.ServeMux
}

// New constructs the server with routes configured.
func New(completer Completer) (*Server, error) {
	if completer == nil {
		return nil, errors.New("completer required")
	}
	s := &Server{completer: completer, mux: http.NewServeMux()}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/claude", s.handleClaude)
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClaude(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	output, err := s.completer.Complete(r.Context(), req.Prompt)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("claude api call failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Claude API call failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": output})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
