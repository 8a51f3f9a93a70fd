package usecase

import (
	"context"
	"net/url"
	"strings"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
)

// NavigationUsecase is the route guard: routes marked RequiresAuth are only
// reachable while a credential is stored.
type NavigationUsecase struct {
	credentials domain.CredentialChecker
	routes      []domain.Route
}

func NewNavigationUsecase(credentials domain.CredentialChecker, routes []domain.Route) *NavigationUsecase {
	if routes == nil {
		routes = domain.Routes
	}
	return &NavigationUsecase{credentials: credentials, routes: routes}
}

// Navigate decides whether fullPath (path plus optional query) may be shown.
// Blocked navigations are redirected to the login page with the original
// target in the "redirect" query parameter.
func (u *NavigationUsecase) Navigate(ctx context.Context, fullPath string) domain.NavigationDecision {
	route, params, ok := u.Match(fullPath)
	if !ok {
		return domain.NavigationDecision{Allowed: true}
	}

	decision := domain.NavigationDecision{Allowed: true, Route: route.Name, Params: params}
	if route.RequiresAuth && !u.credentials.HasCredential(ctx) {
		metrics.GuardRedirects.WithLabelValues(route.Name).Inc()
		logger.WithContext(ctx).Debug().Str("route", route.Name).Str("to", fullPath).Msg("Navigation redirected to login")
		return domain.NavigationDecision{
			Allowed:  false,
			Route:    route.Name,
			Params:   params,
			Redirect: LoginRedirect(fullPath),
		}
	}
	return decision
}

// LoginRedirect builds the login URL that returns to fullPath afterwards.
func LoginRedirect(fullPath string) string {
	return domain.LoginPath + "?" + url.Values{"redirect": {fullPath}}.Encode()
}

// Match finds the route for fullPath. Query and fragment are ignored and a
// trailing slash is optional; ":name" segments capture one path segment.
func (u *NavigationUsecase) Match(fullPath string) (domain.Route, map[string]string, bool) {
	path := fullPath
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	segments := splitPath(path)

	for _, route := range u.routes {
		if params, ok := matchSegments(splitPath(route.Path), segments); ok {
			return route, params, true
		}
	}
	return domain.Route{}, nil, false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, part := range pattern {
		if strings.HasPrefix(part, ":") {
			if segments[i] == "" {
				return nil, false
			}
			value, err := url.PathUnescape(segments[i])
			if err != nil {
				value = segments[i]
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[part[1:]] = value
			continue
		}
		if part != segments[i] {
			return nil, false
		}
	}
	return params, true
}
