package domain

// Route is one entry of the storefront's navigation table.
type Route struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requiresAuth"`
}

const (
	RouteLogin          = "Login"
	RouteHome           = "Home"
	RouteProductDetails = "ProductDetails"
	RouteWishlist       = "wishlist"
	RouteCart           = "cart"

	LoginPath = "/login"
)

// Routes mirrors the storefront router. The wishlist path keeps the
// spelling clients already link to.
var Routes = []Route{
	{Name: RouteLogin, Path: LoginPath},
	{Name: RouteHome, Path: "/", RequiresAuth: true},
	{Name: RouteProductDetails, Path: "/product/:id", RequiresAuth: true},
	{Name: RouteWishlist, Path: "/wihslist"},
	{Name: RouteCart, Path: "/cart"},
}

// NavigationDecision is the guard's verdict for one navigation attempt.
type NavigationDecision struct {
	Allowed  bool              `json:"allowed"`
	Route    string            `json:"route,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}
