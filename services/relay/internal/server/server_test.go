package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mailcraft/pkg/ai"
)

func newRelay(t *testing.T, upstream http.HandlerFunc) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)
	s, err := New(ai.NewAnthropicCompleter(ai.AnthropicConfig{APIKey: "secret", BaseURL: up.URL}))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer resp.Body.Close()
	out := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestClaudeForwardsPrompt(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/complete" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" || r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("unexpected headers: %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"prompt":"Human: hi"`) {
			t.Errorf("prompt not forwarded: %s", body)
		}
		_, _ = w.Write([]byte(`{"completion":" Hello there."}`))
	})

	resp, err := http.Post(srv.URL+"/api/claude", "application/json", strings.NewReader(`{"prompt":"Human: hi"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out := decode(t, resp); out["output"] != " Hello there." {
		t.Fatalf("output = %q", out["output"])
	}
}

func TestClaudeUpstreamFailure(t *testing.T) {
	srv := newRelay(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	})

	resp, err := http.Post(srv.URL+"/api/claude", "application/json", strings.NewReader(`{"prompt":"x"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	out := decode(t, resp)
	if out["error"] != "Claude API call failed" {
		t.Fatalf("error = %q", out["error"])
	}
	if strings.Contains(out["error"], "authentication_error") {
		t.Fatalf("upstream detail must not leak to the client")
	}
}

func TestClaudeRejectsBadRequests(t *testing.T) {
	called := false
	srv := newRelay(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		_, _ = w.Write([]byte(`{"completion":""}`))
	})

	resp, err := http.Post(srv.URL+"/api/claude", "application/json", strings.NewReader(`{"prompt":`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid json status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/claude")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", resp.StatusCode)
	}
	if called {
		t.Fatalf("rejected requests must not reach upstream")
	}
}

func TestNewRequiresCompleter(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil completer")
	}
}
