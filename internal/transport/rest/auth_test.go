package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/service/auth"
)

type fakeVerifier struct {
	verifyFn func(token string) (int64, string, error)
}

func (f *fakeVerifier) VerifyToken(token string) (int64, string, error) {
	if f.verifyFn == nil {
		panic("VerifyToken not configured")
	}
	return f.verifyFn(token)
}

type fakeAuthService struct {
	loginFn func(ctx context.Context, username, password string) (domain.User, string, error)
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	if f.loginFn == nil {
		panic("Login not configured")
	}
	return f.loginFn(ctx, username, password)
}

func newAuthedRouter(verifier tokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(Auth(verifier, slog.Default()))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": actor(c)})
	})
	return r
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	r := newAuthedRouter(&fakeVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuth_InvalidTokenRejected(t *testing.T) {
	r := newAuthedRouter(&fakeVerifier{
		verifyFn: func(token string) (int64, string, error) {
			return 0, "", errors.New("bad signature")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuth_ValidTokenSetsActor(t *testing.T) {
	var gotToken string
	r := newAuthedRouter(&fakeVerifier{
		verifyFn: func(token string) (int64, string, error) {
			gotToken = token
			return 3, "admin", nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotToken != "tok123" {
		t.Fatalf("token = %q, want %q", gotToken, "tok123")
	}
	if got := w.Body.String(); got != `{"username":"admin"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestLogin_InvalidCredentialsMapTo401(t *testing.T) {
	r := gin.New()
	h := NewAuthHandler(&fakeAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.User, string, error) {
			return domain.User{}, "", auth.ErrInvalidCredentials
		},
	}, slog.Default())
	r.POST("/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/login", map[string]any{"username": "admin", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogin_ReturnsTokenAndUser(t *testing.T) {
	r := gin.New()
	h := NewAuthHandler(&fakeAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.User, string, error) {
			if username != "admin" || password != "secret" {
				return domain.User{}, "", auth.ErrInvalidCredentials
			}
			return domain.User{ID: 1, Username: "admin"}, "tok", nil
		},
	}, slog.Default())
	r.POST("/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/login", map[string]any{"username": "admin", "password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestRequestID_HonorsClientHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "req-1" {
		t.Fatalf("request id = %q, want %q", got, "req-1")
	}
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}
}
