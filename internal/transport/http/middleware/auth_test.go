package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marina/internal/domain/auth"
)

const testSecret = "middleware-test-secret"

func mintToken(t *testing.T, user auth.User) string {
	t.Helper()
	token, _, err := auth.GenerateToken(testSecret, auth.ClaimsFor(user), time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthAttachesPrincipal(t *testing.T) {
	user := auth.User{Username: "hmousi", Email: "housi.mousi@marina.ch", FirstName: "Housi", LastName: "Mousi", Roles: []string{auth.RoleUser}}
	var got auth.User
	var ok bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/employees/user", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, user))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected principal on context")
	}
	if got.Email != user.Email || got.Username != user.Username || !got.HasRole(auth.RoleUser) {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestAuthInvalidTokenContinuesAnonymous(t *testing.T) {
	tests := map[string]string{
		"garbage":      "Bearer not-a-token",
		"wrong scheme": "Basic abc",
		"no token":     "Bearer",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if _, ok := GetUser(r.Context()); ok {
					t.Fatal("expected anonymous request")
				}
			}))
			req := httptest.NewRequest(http.MethodGet, "/employees", nil)
			req.Header.Set("Authorization", header)
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if !called {
				t.Fatal("expected next handler to run")
			}
		})
	}
}

func TestClaimsResolver(t *testing.T) {
	resolver := ClaimsResolver{}

	user, err := resolver.Resolve(context.Background())
	if err != nil || user != nil {
		t.Fatalf("expected unresolvable principal, got %+v %v", user, err)
	}

	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err = resolver.Resolve(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/employees/user", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, auth.User{Username: "noemail", Roles: []string{auth.RoleUser}}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if err != nil || user != nil {
		t.Fatalf("expected principal without email to be unresolvable, got %+v %v", user, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/employees/user", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, auth.User{Username: "hmousi", Email: "housi.mousi@marina.ch"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if err != nil || user == nil || user.Email != "housi.mousi@marina.ch" {
		t.Fatalf("expected resolved principal, got %+v %v", user, err)
	}
}

func TestRequireRole(t *testing.T) {
	protected := Auth(testSecret)(RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		user   *auth.User
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "missing role", user: &auth.User{Username: "u", Roles: []string{auth.RoleUser}}, status: http.StatusForbidden},
		{name: "admin", user: &auth.User{Username: "a", Roles: []string{auth.RoleAdmin}}, status: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/employees", nil)
			if tc.user != nil {
				req.Header.Set("Authorization", "Bearer "+mintToken(t, *tc.user))
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "req-123" || rec.Header().Get("X-Request-ID") != "req-123" {
		t.Fatalf("expected caller request id, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if seen == "" || seen == "req-123" {
		t.Fatalf("expected generated request id, got %q", seen)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
