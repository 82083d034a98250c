package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"cybersite/internal/models"
	"cybersite/internal/services"
	"cybersite/internal/utils"
	console "cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

func init() {
	console.SetLevel("error")
}

type fakeAuthenticator struct {
	tokens map[string]*utils.Claims
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*utils.Claims, error) {
	if claims, ok := f.tokens[token]; ok {
		return claims, nil
	}
	return nil, services.ErrUnauthorized
}

func serve(e *echo.Echo, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	auth := &fakeAuthenticator{tokens: map[string]*utils.Claims{
		"good": {UserID: "u1", Email: "a@example.com", Role: string(models.UserRoleAdmin)},
	}}

	e := echo.New()
	g := e.Group("/admin", NewAuthMiddleware(auth).Middleware())
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserID(c)+"|"+GetToken(c))
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid token", "Bearer good", http.StatusOK, "u1|good"},
		{"scheme is case insensitive", "bearer good", http.StatusOK, "u1|good"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/admin/me", tt.header)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	auth := &fakeAuthenticator{tokens: map[string]*utils.Claims{
		"editor": {UserID: "e", Role: string(models.UserRoleEditor)},
		"admin":  {UserID: "a", Role: string(models.UserRoleAdmin)},
		"super":  {UserID: "s", Role: string(models.UserRoleSuperAdmin)},
	}}

	e := echo.New()
	admin := e.Group("/admin", NewAuthMiddleware(auth).Middleware())
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	campaigns := admin.Group("/campaigns", RequireScope("campaigns"))
	campaigns.GET("", ok)
	campaigns.POST("", ok)
	campaigns.PATCH("/:id", ok)
	catalog := admin.Group("/services", RequireScope("services"))
	catalog.PUT("/reorder", ok)
	catalog.DELETE("/:id", ok)
	users := admin.Group("/users", RequireRole(models.UserRoleSuperAdmin))
	users.GET("", ok)

	tests := []struct {
		name     string
		token    string
		method   string
		path     string
		wantCode int
	}{
		{"editor reads campaigns", "editor", http.MethodGet, "/admin/campaigns", http.StatusNoContent},
		{"editor cannot write campaigns", "editor", http.MethodPost, "/admin/campaigns", http.StatusForbidden},
		{"editor cannot update campaigns", "editor", http.MethodPatch, "/admin/campaigns/1", http.StatusForbidden},
		{"editor deletes services", "editor", http.MethodDelete, "/admin/services/1", http.StatusNoContent},
		{"editor reorders services", "editor", http.MethodPut, "/admin/services/reorder", http.StatusNoContent},
		{"admin writes campaigns", "admin", http.MethodPost, "/admin/campaigns", http.StatusNoContent},
		{"admin cannot list users", "admin", http.MethodGet, "/admin/users", http.StatusForbidden},
		{"super admin lists users", "super", http.MethodGet, "/admin/users", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.path, "Bearer "+tt.token)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestGetRequiredPermissionForMethod(t *testing.T) {
	tests := map[string]string{
		http.MethodGet:     models.ScopeRead,
		http.MethodHead:    models.ScopeRead,
		http.MethodPost:    models.ScopeCreate,
		http.MethodPut:     models.ScopeUpdate,
		http.MethodPatch:   models.ScopeUpdate,
		http.MethodDelete:  models.ScopeDelete,
		http.MethodOptions: "",
	}
	for method, want := range tests {
		if got := GetRequiredPermissionForMethod(method); got != want {
			t.Errorf("%s -> %q, want %q", method, got, want)
		}
	}
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (f *fakeLimiter) Allow(context.Context, string) (bool, error) {
	return f.allow, f.err
}

func TestFormRateLimit(t *testing.T) {
	tests := []struct {
		name      string
		limiter   Limiter
		wantCode  int
		wantRetry string
	}{
		{"no limiter", nil, http.StatusCreated, ""},
		{"allowed", &fakeLimiter{allow: true}, http.StatusCreated, ""},
		{"throttled", &fakeLimiter{allow: false}, http.StatusTooManyRequests, "60"},
		{"limiter down", &fakeLimiter{err: errors.New("redis down")}, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.POST("/form", func(c echo.Context) error {
				return c.NoContent(http.StatusCreated)
			}, FormRateLimit(tt.limiter, 60))

			rec := serve(e, http.MethodPost, "/form", "")
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.wantRetry {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetry)
			}
		})
	}
}

type onePerKeyLimiter struct {
	seen map[string]bool
}

func (l *onePerKeyLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.seen[key] {
		return false, nil
	}
	l.seen[key] = true
	return true, nil
}

func TestFormRateLimitIgnoresForwardedHeader(t *testing.T) {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	limiter := &onePerKeyLimiter{seen: map[string]bool{}}
	e.POST("/form", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, FormRateLimit(limiter, 60))

	accepted := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set(echo.HeaderXForwardedFor, "198.51.100."+strconv.Itoa(i))
		req.Header.Set(echo.HeaderXRealIP, "198.51.100."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusCreated {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("accepted %d of 10 posts from one peer", accepted)
	}
	if !limiter.seen["203.0.113.7"] || len(limiter.seen) != 1 {
		t.Errorf("limiter keys = %v", limiter.seen)
	}
}
