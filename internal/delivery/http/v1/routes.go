package v1

import (
	"net/http"

	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/metrics"
	"storefront-backend/pkg/utils"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Driver       string
	SecureCookie bool
}

// NewRouter registers every storefront endpoint on a fresh ServeMux.
// Session-scoped endpoints run behind the session middleware.
func NewRouter(sessions *usecase.SessionManager, opts RouterOptions) *http.ServeMux {
	mux := http.NewServeMux()

	withSession := middleware.NewSessionMiddleware(sessions, opts.SecureCookie)
	scoped := func(h http.HandlerFunc) http.Handler {
		return withSession(h)
	}
	guarded := func(h http.HandlerFunc) http.Handler {
		return withSession(middleware.RequireCredential(h))
	}

	sessionHandler := NewSessionHandler()
	cartHandler := NewCartHandler()
	wishlistHandler := NewWishlistHandler()
	comparisonHandler := NewComparisonHandler()
	themeHandler := NewThemeHandler()

	// Session & credential
	mux.Handle("GET /api/v1/session", scoped(sessionHandler.GetSession))
	mux.Handle("PUT /api/v1/session/token", scoped(sessionHandler.StoreToken))
	mux.Handle("DELETE /api/v1/session/token", scoped(sessionHandler.ClearToken))
	mux.Handle("GET /api/v1/session/me", guarded(sessionHandler.Me))

	// Route guard
	mux.Handle("GET /api/v1/navigate", scoped(sessionHandler.Navigate))

	// Cart
	mux.Handle("GET /api/v1/cart", scoped(cartHandler.GetCart))
	mux.Handle("POST /api/v1/cart", scoped(cartHandler.AddToCart))
	mux.Handle("DELETE /api/v1/cart", scoped(cartHandler.ClearCart))
	mux.Handle("PUT /api/v1/cart/{productId}", scoped(cartHandler.UpdateQuantity))
	mux.Handle("DELETE /api/v1/cart/{productId}", scoped(cartHandler.RemoveFromCart))

	// Wishlist
	mux.Handle("GET /api/v1/wishlist", scoped(wishlistHandler.GetWishlist))
	mux.Handle("POST /api/v1/wishlist", scoped(wishlistHandler.AddToWishlist))
	mux.Handle("DELETE /api/v1/wishlist", scoped(wishlistHandler.ClearWishlist))
	mux.Handle("GET /api/v1/wishlist/{productId}", scoped(wishlistHandler.IsInWishlist))
	mux.Handle("DELETE /api/v1/wishlist/{productId}", scoped(wishlistHandler.RemoveFromWishlist))

	// Comparison
	mux.Handle("GET /api/v1/comparison", scoped(comparisonHandler.GetComparison))
	mux.Handle("POST /api/v1/comparison", scoped(comparisonHandler.AddToComparison))
	mux.Handle("DELETE /api/v1/comparison", scoped(comparisonHandler.ClearComparison))
	mux.Handle("POST /api/v1/comparison/reload", scoped(comparisonHandler.ReloadComparison))
	mux.Handle("GET /api/v1/comparison/{productId}", scoped(comparisonHandler.IsInComparison))
	mux.Handle("DELETE /api/v1/comparison/{productId}", scoped(comparisonHandler.RemoveFromComparison))

	// Theme
	mux.Handle("GET /api/v1/theme", scoped(themeHandler.GetTheme))
	mux.Handle("PUT /api/v1/theme", scoped(themeHandler.SetTheme))
	mux.Handle("POST /api/v1/theme/toggle", scoped(themeHandler.ToggleTheme))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"kv":       opts.Driver,
			"sessions": sessions.Count(),
		})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Load balancer probe

	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
