package v1

import (
	"bytes"
	"encoding/base64"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	memcache "storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/repository/kvstore"
	"storefront-backend/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t         *testing.T
	handler   http.Handler
	sessionID string
}

func newClient(t *testing.T) *client {
	t.Helper()
	sessions := usecase.NewSessionManager(
		kvstore.NewMemoryStore(),
		memcache.NewMemoryCache(time.Minute, 0, nil),
		time.Minute,
		usecase.SessionOptions{},
	)
	return &client{t: t, handler: NewRouter(sessions, RouterOptions{Driver: "memory"})}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.Header.Set(middleware.SessionHeader, c.sessionID)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if id := rec.Header().Get(middleware.SessionHeader); id != "" {
		c.sessionID = id
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func tokenFor(sub string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." +
		enc.EncodeToString([]byte(`{"sub":"`+sub+`"}`)) + ".sig"
}

func TestSessionIsIssuedAndReused(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := c.sessionID
	require.NotEmpty(t, first)
	assert.NotEmpty(t, rec.Result().Cookies())

	resp := decode[SessionResponse](t, rec)
	assert.Equal(t, first, resp.SessionID)
	assert.False(t, resp.HasCredential)
	assert.Equal(t, "light", string(resp.Theme.Theme))

	rec = c.do(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, first, decode[SessionResponse](t, rec).SessionID)
}

func TestMalformedSessionIDGetsFreshSession(t *testing.T) {
	c := newClient(t)
	c.sessionID = "not-a-uuid"

	rec := c.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "not-a-uuid", c.sessionID)
}

func TestCartEndpoints(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": 1, "price": 10.5, "name": "Mug"})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[CartResponse](t, rec)
	assert.False(t, cart.Identified)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)

	rec = c.do(http.MethodPut, "/api/v1/session/token", map[string]string{"token": tokenFor("u1")})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[MeResponse](t, rec)
	assert.True(t, me.Identified)
	assert.Equal(t, "u1", me.UserID)

	c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": 1, "price": 10.5, "name": "Mug"})
	c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": "1", "price": 10.5, "name": "Mug"})
	rec = c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": "2", "price": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	cart = decode[CartResponse](t, rec)
	assert.True(t, cart.Identified)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Mug", cart.Items[0].Attributes["name"])
	assert.Equal(t, 3, cart.Count)
	assert.Equal(t, "24.00", cart.Total)

	rec = c.do(http.MethodPut, "/api/v1/cart/2", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[CartResponse](t, rec).Items[1].Quantity)

	rec = c.do(http.MethodPut, "/api/v1/cart/2", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[CartResponse](t, rec).Items[1].Quantity)

	rec = c.do(http.MethodDelete, "/api/v1/cart/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.00", decode[CartResponse](t, rec).Total)

	rec = c.do(http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[CartResponse](t, rec).Count)
}

func TestCartQuantityLimit(t *testing.T) {
	c := newClient(t)
	c.do(http.MethodPut, "/api/v1/session/token", map[string]string{"token": tokenFor("u1")})
	c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": "a", "price": 1})
	c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": "b", "price": 2})

	for _, id := range []string{"a", "b"} {
		rec := c.do(http.MethodPut, "/api/v1/cart/"+id, map[string]int{"quantity": math.MaxInt})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": "a", "price": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decode[CartResponse](t, rec)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, domain.MaxQuantity, cart.Items[0].Quantity)
	assert.Equal(t, domain.MaxQuantity, cart.Items[1].Quantity)
	assert.Equal(t, 2*domain.MaxQuantity, cart.Count)
	assert.Equal(t, "29997.00", cart.Total)
}

func TestCartRejectsBadInput(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/cart", "{").Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/cart", map[string]any{"price": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/cart", map[string]any{"id": "1", "price": -2}).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/api/v1/cart/1", map[string]any{}).Code)
}

func TestWishlistEndpoints(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/wishlist", map[string]any{"id": "7", "price": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[changeResponse](t, rec).Changed)

	rec = c.do(http.MethodPost, "/api/v1/wishlist", map[string]any{"id": 7, "price": 5})
	resp := decode[changeResponse](t, rec)
	assert.False(t, resp.Changed)
	assert.Equal(t, 1, resp.Count)

	rec = c.do(http.MethodGet, "/api/v1/wishlist/7", nil)
	assert.True(t, decode[membershipResponse](t, rec).Present)

	rec = c.do(http.MethodDelete, "/api/v1/wishlist/8", nil)
	assert.False(t, decode[changeResponse](t, rec).Changed)

	rec = c.do(http.MethodDelete, "/api/v1/wishlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, "/api/v1/wishlist", nil)
	assert.Zero(t, decode[productListResponse](t, rec).Count)
}

func TestComparisonEndpoints(t *testing.T) {
	c := newClient(t)

	for _, id := range []string{"1", "2", "3", "4"} {
		rec := c.do(http.MethodPost, "/api/v1/comparison", map[string]any{"id": id, "price": 1})
		require.True(t, decode[changeResponse](t, rec).Changed)
	}

	rec := c.do(http.MethodPost, "/api/v1/comparison", map[string]any{"id": "5", "price": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[changeResponse](t, rec)
	assert.False(t, resp.Changed)
	assert.Equal(t, 4, resp.Count)
	assert.Equal(t, 4, resp.Limit)

	rec = c.do(http.MethodGet, "/api/v1/comparison/5", nil)
	assert.False(t, decode[membershipResponse](t, rec).Present)

	rec = c.do(http.MethodDelete, "/api/v1/comparison/1", nil)
	assert.True(t, decode[changeResponse](t, rec).Changed)

	rec = c.do(http.MethodPost, "/api/v1/comparison/reload", nil)
	assert.Equal(t, 3, decode[productListResponse](t, rec).Count)

	rec = c.do(http.MethodDelete, "/api/v1/comparison", nil)
	assert.Zero(t, decode[productListResponse](t, rec).Count)
}

func TestThemeEndpoints(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/theme/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	theme := decode[ThemeResponse](t, rec)
	assert.Equal(t, "dark", string(theme.Theme))
	assert.True(t, theme.IsDark)

	rec = c.do(http.MethodPut, "/api/v1/theme", map[string]string{"theme": "light"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ThemeResponse](t, rec).IsDark)

	rec = c.do(http.MethodPut, "/api/v1/theme", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigateAndMe(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/navigate?to=%2Fproduct%2F7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var decision struct {
		Allowed  bool   `json:"allowed"`
		Route    string `json:"route"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "ProductDetails", decision.Route)
	assert.Equal(t, "/login?redirect=%2Fproduct%2F7", decision.Redirect)

	rec = c.do(http.MethodGet, "/api/v1/session/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", decode[map[string]string](t, rec)["redirect"])

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/v1/navigate", nil).Code)

	// Bearer header works as well as the JSON body.
	req := httptest.NewRequest(http.MethodPut, "/api/v1/session/token", nil)
	req.Header.Set(middleware.SessionHeader, c.sessionID)
	req.Header.Set("Authorization", "Bearer "+tokenFor("u2"))
	out := httptest.NewRecorder()
	c.handler.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	rec = c.do(http.MethodGet, "/api/v1/navigate?to=/product/7", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.True(t, decision.Allowed)

	rec = c.do(http.MethodGet, "/api/v1/session/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u2", decode[MeResponse](t, rec).UserID)

	rec = c.do(http.MethodDelete, "/api/v1/session/token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/session/me", nil).Code)
}

func TestStoreTokenRejectsBlank(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPut, "/api/v1/session/token", map[string]string{"token": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsDoNotShareState(t *testing.T) {
	a := newClient(t)
	b := &client{t: t, handler: a.handler}

	a.do(http.MethodPost, "/api/v1/wishlist", map[string]any{"id": "1", "price": 1})
	b.do(http.MethodGet, "/api/v1/session", nil)
	require.NotEqual(t, a.sessionID, b.sessionID)

	rec := b.do(http.MethodGet, "/api/v1/wishlist", nil)
	assert.Zero(t, decode[productListResponse](t, rec).Count)
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
	assert.Empty(t, rec.Header().Get(middleware.SessionHeader), "health is not session scoped")
}
