package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// okHandler records whether the chain reached it and echoes the claims it
// finds in the context.
func okHandler(t *testing.T, reached *bool, gotClaims *Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		if c, ok := ClaimsFromContext(r.Context()); ok {
			*gotClaims = c
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Issue("user-42", RoleUser, UserTokenTTL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var (
		reached bool
		claims  Claims
	)
	h := RequireAuth(ts)(okHandler(t, &reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !reached {
		t.Fatal("handler was not reached with a valid token")
	}
	if claims.UserID != "user-42" {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, "user-42")
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts := newTestTokenService(t)

	var (
		reached bool
		claims  Claims
	)
	h := RequireAuth(ts)(okHandler(t, &reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if reached {
		t.Error("handler should not run without a token")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("user-42", RoleUser, UserTokenTTL)

	var (
		reached bool
		claims  Claims
	)
	h := RequireAuth(ts)(okHandler(t, &reached, &claims))

	for _, header := range []string{
		token,             // no scheme
		"Basic " + token,  // wrong scheme
		"Bearer",          // scheme only
		"Bearer ",         // empty token
	} {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		if reached {
			t.Errorf("header %q: handler should not run", header)
		}
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("user-42", RoleUser, -1*time.Minute)

	var (
		reached bool
		claims  Claims
	)
	h := RequireAuth(ts)(okHandler(t, &reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if reached {
		t.Error("handler should not run with an expired token")
	}
}

func TestRequireAdmin_AdminToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("", RoleAdmin, AdminTokenTTL)

	var (
		reached bool
		claims  Claims
	)
	h := RequireAuth(ts)(RequireAdmin(okHandler(t, &reached, &claims)))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !reached {
		t.Fatal("handler was not reached with an admin token")
	}
	if !claims.IsAdmin() {
		t.Error("claims should carry the admin role")
	}
}

// A valid user token on an admin route is authenticated but not authorized:
// stage one passes, stage two fails with 403, never 401.
func TestRequireAdmin_UserTokenForbidden(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Issue("user-42", RoleUser, UserTokenTTL)

	var (
		reached bool
		claims  Claims
	)
	h := RequireAuth(ts)(RequireAdmin(okHandler(t, &reached, &claims)))

	req := httptest.NewRequest(http.MethodDelete, "/admin/user/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if reached {
		t.Error("handler should not run for a non-admin token")
	}
}

// RequireAdmin without RequireAuth in front never sees claims; that is a
// wiring bug and it fails closed with 401.
func TestRequireAdmin_NoClaims(t *testing.T) {
	var (
		reached bool
		claims  Claims
	)
	h := RequireAdmin(okHandler(t, &reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if reached {
		t.Error("handler should not run without claims in context")
	}
}
