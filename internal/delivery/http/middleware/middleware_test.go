package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-backend/config"
	memcache "storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/repository/kvstore"
	"storefront-backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions() *usecase.SessionManager {
	return usecase.NewSessionManager(
		kvstore.NewMemoryStore(),
		memcache.NewMemoryCache(time.Minute, 0, nil),
		time.Minute,
		usecase.SessionOptions{},
	)
}

func TestSessionMiddleware(t *testing.T) {
	sessions := newSessions()
	var seen *usecase.Session
	handler := NewSessionMiddleware(sessions, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		seen = s
	}))

	t.Run("issues a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotNil(t, seen)
		assert.Equal(t, seen.ID, rec.Header().Get(SessionHeader))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookie, cookies[0].Name)
		assert.Equal(t, seen.ID, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("reads the cookie", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, id, seen.ID)
		assert.Empty(t, rec.Result().Cookies(), "matching cookie is not re-sent")
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, id)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: uuid.NewString()})
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, id, seen.ID)
	})
}

func TestRequireCredential(t *testing.T) {
	sessions := newSessions()
	reached := false
	handler := NewSessionMiddleware(sessions, false)(RequireCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, id)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)

	session, err := sessions.Open(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, session.Credentials.Store(context.Background(), "opaque"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestRequireCredentialWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireCredential(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{AllowedOrigin: "http://localhost:5173, https://shop.example"}
	handler := NewCORSMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), SessionHeader)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 2, time.Hour, time.Hour)
	defer rl.Shutdown()
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serve := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve("10.0.0.1").Code)
	rec := serve("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve("10.0.0.2").Code)
	assert.Equal(t, 2, rl.Visitors())
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 1, time.Hour, time.Millisecond)
	defer rl.Shutdown()

	rl.visitorLimiter("a")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()
	assert.Zero(t, rl.Visitors())
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}
