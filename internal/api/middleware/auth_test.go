package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"truetime.service/internal/core/model"
)

var testSecret = []byte("unit-test-secret")

func issueToken(t *testing.T, email, role string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(expiresIn).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func protectedEndpoint(roles ...model.Role) http.Handler {
	inner := func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		w.Header().Set("X-Subject", claims.Subject)
		w.WriteHeader(http.StatusOK)
	}
	return Authenticate(testSecret)(http.HandlerFunc(RequireRoles(roles...)(inner)))
}

func doRequest(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateMissingToken(t *testing.T) {
	rec := doRequest(protectedEndpoint(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateGarbageToken(t *testing.T) {
	rec := doRequest(protectedEndpoint(), "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	token := issueToken(t, "ada@example.com", "admin", -time.Minute)
	rec := doRequest(protectedEndpoint(), token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateWrongSigningKey(t *testing.T) {
	claims := jwt.MapClaims{"sub": "ada@example.com", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	rec := doRequest(protectedEndpoint(), forged)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRolesRejectsInsufficientRole(t *testing.T) {
	token := issueToken(t, "viewer@example.com", "viewer", time.Hour)
	rec := doRequest(protectedEndpoint(model.RoleAdmin, model.RoleManager), token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRolesAdmitsAllowedRole(t *testing.T) {
	token := issueToken(t, "boss@example.com", "manager", time.Hour)
	rec := doRequest(protectedEndpoint(model.RoleAdmin, model.RoleManager), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Subject"); got != "boss@example.com" {
		t.Errorf("subject = %q, want boss@example.com", got)
	}
}

func TestRequireRolesEmptyListAdmitsAnyAuthenticated(t *testing.T) {
	token := issueToken(t, "viewer@example.com", "viewer", time.Hour)
	rec := doRequest(protectedEndpoint(), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRolesRejectsUnknownRoleValue(t *testing.T) {
	token := issueToken(t, "odd@example.com", "superuser", time.Hour)
	rec := doRequest(protectedEndpoint(model.RoleAdmin), token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
