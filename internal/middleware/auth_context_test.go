package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"adoptipet/internal/ports/auth"
)

type fakeVerifier struct {
	claims auth.Claims
	err    error
}

func (f fakeVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if token != "good" {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return f.claims, f.err
}

type fakeAdmins map[string]bool

func (f fakeAdmins) IsAdmin(ctx context.Context, c auth.Claims) (bool, error) {
	if c.UserID == "broken" {
		return false, errors.New("upstream down")
	}
	return f[c.UserID] || c.HasRole(auth.RoleAdmin), nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := GetClaims(r.Context())
		_, _ = w.Write([]byte(c.UserID))
	})
}

func TestAuthContext_DevHeaders(t *testing.T) {
	h := AuthContext(nil)(RequireUser(echoUser()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without debug header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderDebugUserID, "u1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "u1" {
		t.Fatalf("expected 200 u1, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthContext_BearerVerifier(t *testing.T) {
	h := AuthContext(fakeVerifier{claims: auth.Claims{UserID: "jwt-user"}})(RequireUser(echoUser()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "jwt-user" {
		t.Fatalf("expected 200 jwt-user, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	h := AuthContext(nil)(ResolveAdmin(fakeAdmins{"cfg-admin": true})(RequireAdmin(echoUser())))

	cases := []struct {
		user, role string
		want       int
	}{
		{"", "", http.StatusUnauthorized},
		{"u1", "", http.StatusForbidden},
		{"u1", "admin", http.StatusOK},
		{"cfg-admin", "", http.StatusOK},
		{"broken", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.user != "" {
			req.Header.Set(HeaderDebugUserID, tc.user)
		}
		if tc.role != "" {
			req.Header.Set(HeaderDebugRole, tc.role)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("user=%q role=%q: expected %d, got %d", tc.user, tc.role, tc.want, rec.Code)
		}
	}
}
