package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HerbHall/fleetpulse/internal/server"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T, password string) *Service {
	t.Helper()
	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		hash = string(h)
	}
	tokens := NewTokenService([]byte("test-secret"), time.Minute)
	return NewService(tokens, "admin", hash, zap.NewNop())
}

func login(t *testing.T, svc *Service, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)

	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	svc := testService(t, "hunter2")

	rec := login(t, svc, "admin", "hunter2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("empty access token")
	}
	if resp.ExpiresIn != 60 {
		t.Errorf("ExpiresIn = %d, want 60", resp.ExpiresIn)
	}

	if _, err := svc.ValidateToken(resp.AccessToken); err != nil {
		t.Errorf("issued token does not validate: %v", err)
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc := testService(t, "hunter2")

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"intruder", "hunter2"},
	} {
		rec := login(t, svc, tc.user, tc.pass)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login(%s/%s) status = %d, want 401", tc.user, tc.pass, rec.Code)
		}

		var p server.Problem
		if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if p.Type != server.ProblemTypeUnauthorized {
			t.Errorf("problem type = %q, want %q", p.Type, server.ProblemTypeUnauthorized)
		}
	}
}

func TestEnabled(t *testing.T) {
	if testService(t, "").Enabled() {
		t.Error("Enabled() = true with no password hash")
	}
	if !testService(t, "pw").Enabled() {
		t.Error("Enabled() = false with password hash set")
	}
}

func TestMiddleware_RejectsWithoutToken(t *testing.T) {
	svc := testService(t, "hunter2")
	var reached bool
	handler := svc.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/devices", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if reached {
		t.Error("handler reached without token")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}

	var p server.Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != server.ProblemTypeUnauthorized {
		t.Errorf("problem type = %q, want %q", p.Type, server.ProblemTypeUnauthorized)
	}
}

func TestMiddleware_AcceptsValidToken(t *testing.T) {
	svc := testService(t, "hunter2")
	token, err := svc.tokens.IssueAccessToken("admin")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	var claims *Claims
	handler := svc.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		claims = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/devices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if claims == nil || claims.Username != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestMiddleware_SkipsPublicAndNonAPIPaths(t *testing.T) {
	svc := testService(t, "hunter2")
	handler := svc.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/healthz", "/metrics", "/api/v1/auth/login", "/api/v1/ws/status"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("path %s: status = %d, want passthrough 204", path, rec.Code)
		}
	}
}
