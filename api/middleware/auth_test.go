package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/auth"
	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsContextAndEnsuresUser(t *testing.T) {
	token := mintTestToken(t, testJWT, "uid-1", "Ana@Example.com")
	dir := &stubDirectory{}

	var captured struct {
		user  string
		email string
	}
	handler := Auth(testJWT, dir, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.email = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != "uid-1" {
		t.Fatalf("expected uid-1 got %q", captured.user)
	}
	if captured.email != "ana@example.com" {
		t.Fatalf("expected normalized email got %q", captured.email)
	}
	if dir.ensured != "uid-1" {
		t.Fatalf("expected profile bootstrap for uid-1 got %q", dir.ensured)
	}
}

func TestAuthSurfacesDirectoryFailure(t *testing.T) {
	token := mintTestToken(t, testJWT, "uid-1", "")
	dir := &stubDirectory{err: pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("down"), "load user")}
	called := false
	handler := Auth(testJWT, dir, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if called {
		t.Fatal("handler should not run when the profile bootstrap fails")
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, uid, email string) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{UID: uid, Email: email})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubDirectory struct {
	ensured string
	err     error
}

func (s *stubDirectory) EnsureUser(_ context.Context, uid, email string) (*users.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.ensured = uid
	return &users.Profile{UID: uid, Email: email}, nil
}

func (s *stubDirectory) ResolveEmail(context.Context, string) (string, error) {
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "no user with that email")
}

func (s *stubDirectory) EmailFor(context.Context, string) (string, error) {
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}
