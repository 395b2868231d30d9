package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, raw string) (string, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) (string, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, raw)
	}
	return "", session.ErrUnauthenticated
}

func newProtectedRouter(resolver *fakeResolver) *gin.Engine {
	r := gin.New()

	m := middlewares.NewAuthMiddleware(resolver)

	r.GET("/protected", m.RequireSession(), func(c *gin.Context) {
		userID, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})

	return r
}

func TestRequireSession(t *testing.T) {
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, raw string) (string, error) {
			if raw == "live-token" {
				return "user-1", nil
			}
			return "", session.ErrUnauthenticated
		},
	}

	tests := []struct {
		name       string
		authHeader string
		cookie     string
		wantStatus int
	}{
		{
			name:       "bearer token",
			authHeader: "Bearer live-token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "cookie fallback",
			cookie:     "live-token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "no token at all",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			authHeader: "Bearer dead-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token looks the same as unknown",
			cookie:     "dead-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newProtectedRouter(resolver)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: tc.cookie})
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRequireSessionDoesNotBlameTheTokenForStoreFailures(t *testing.T) {
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, raw string) (string, error) {
			return "", errors.New("store down")
		},
	}

	r := newProtectedRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer live-token")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", rec.Code)
	}
}

func TestBearerHeaderWinsOverCookie(t *testing.T) {
	var seen string

	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, raw string) (string, error) {
			seen = raw
			return "user-1", nil
		},
	}

	r := newProtectedRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: "cookie-token"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	if seen != "header-token" {
		t.Fatalf("resolved %q, want header-token", seen)
	}
}
