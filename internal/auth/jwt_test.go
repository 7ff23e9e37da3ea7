package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func initTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}

func TestInitRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if err := Init(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	initTestSecret(t)
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareNonBearerHeader(t *testing.T) {
	initTestSecret(t)
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a basic auth header")
	}))

	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareInvalidToken(t *testing.T) {
	initTestSecret(t)
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a garbage token")
	}))

	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	initTestSecret(t)
	token, err := GenerateToken("user-123", "jean@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	called := false
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, err := GetClaimsFromContext(r.Context())
		if err != nil {
			t.Fatalf("expected claims in context: %v", err)
		}
		if claims.UserID != "user-123" || claims.Email != "jean@example.com" || claims.Role != "user" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	}))

	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Fatal("handler was not invoked")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJWTMiddlewarePublicPaths(t *testing.T) {
	initTestSecret(t)
	for _, path := range []string{"/health", "/metrics", "/api/login"} {
		called := false
		handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if !called {
			t.Fatalf("%s must be reachable without a token", path)
		}
	}
}

func TestGetClaimsFromContextMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, err := GetClaimsFromContext(req.Context()); err == nil {
		t.Fatal("expected an error without claims")
	}
}
