package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"mailcraft/internal/guard"
	"mailcraft/internal/util"
	"mailcraft/pkg/domain"
	"mailcraft/services/writer/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Guard is optional; without it overlapping and repeated submissions are not checked.
	Guard          *guard.Guard
	TrustedProxies *util.TrustedProxies
}

// Server exposes HTTP endpoints for the writer service.
type Server struct {
	app     *app.App
	guard   *guard.Guard
	proxies *util.TrustedProxies
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	s := &Server{
		app:     cfg.App,
		guard:   cfg.Guard,
		proxies: cfg.TrustedProxies,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/tones", s.handleTones)
	s.mux.HandleFunc("/api/emails", s.handleEmails)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.guard != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.guard.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	tones := s.app.Tones()
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   tones,
		"count":   len(tones),
		"default": domain.DefaultTone,
	})
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	logger := util.LoggerFromContext(r.Context())
	var req emailRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	locale := req.Locale
	if strings.TrimSpace(locale) == "" {
		locale = app.PreferredLocale(r.Header.Get("Accept-Language"))
	}
	draft, err := s.app.Prepare(domain.Draft{
		Thoughts: req.Thoughts,
		Tone:     domain.Tone(req.Tone),
		Context:  req.Context,
		Locale:   locale,
	})
	switch {
	case errors.Is(err, app.ErrEmptyThoughts):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := util.SessionKey(r, s.proxies)
	if s.guard != nil {
		if err := s.guard.Check(r.Context(), session, draft); err != nil {
			writeGuardError(w, r, err)
			return
		}
		lease, err := s.guard.Acquire(r.Context(), session)
		if err != nil {
			writeGuardError(w, r, err)
			return
		}
		defer func() {
			// The request context may already be cancelled; release regardless.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
			defer cancel()
			if err := s.guard.Release(ctx, lease); err != nil {
				logger.Warn("release in-flight lease failed", "err", err)
			}
		}()
	}

	outcome, err := s.app.Compose(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.guard != nil && !abandoned(r, outcome) {
		if err := s.guard.Record(context.WithoutCancel(r.Context()), session, draft, outcome); err != nil {
			logger.Warn("record outcome failed", "err", err)
		}
	}
	if outcome.Failed() {
		writeJSON(w, http.StatusBadGateway, emailResponse{
			Error: outcome.Message(),
			Kind:  app.ErrorKind(outcome.Err),
		})
		return
	}
	writeJSON(w, http.StatusOK, emailResponse{
		Email:  outcome.Email,
		Tone:   draft.Tone,
		Locale: draft.Locale,
	})
}

// abandoned reports whether the caller went away before the outcome could be
// shown. Such failures never reach the form and must not gate the draft.
func abandoned(r *http.Request, outcome domain.Outcome) bool {
	return r.Context().Err() != nil || errors.Is(outcome.Err, context.Canceled)
}

type emailRequest struct {
	Thoughts string `json:"thoughts"`
	Tone     string `json:"tone"`
	Context  string `json:"context"`
	Locale   string `json:"locale"`
}

type emailResponse struct {
	Email  string      `json:"email,omitempty"`
	Tone   domain.Tone `json:"tone,omitempty"`
	Locale string      `json:"locale,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeGuardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, guard.ErrInFlight), errors.Is(err, guard.ErrDraftUnchanged):
		writeError(w, http.StatusConflict, err.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("guard unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	}
}
