package usecase

import (
	"context"
	"sync"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
)

const themeStore = "theme"

// ThemeObserver is told about the presentation flag on subscription and
// after every theme change.
type ThemeObserver func(theme domain.Theme)

type ThemeUsecase struct {
	mu        sync.Mutex
	kv        domain.KeyValueStore
	theme     domain.Theme
	observers []ThemeObserver
}

// NewThemeUsecase loads the stored theme, defaulting to light.
func NewThemeUsecase(ctx context.Context, kv domain.KeyValueStore) *ThemeUsecase {
	u := &ThemeUsecase{kv: kv, theme: domain.DefaultTheme}

	raw, found, err := kv.Get(ctx, domain.KeyTheme)
	switch {
	case err != nil:
		logger.WithContext(ctx).Warn().Err(err).Msg("Failed to read stored theme, using default")
	case found && raw != "":
		if t, perr := domain.ParseTheme(raw); perr == nil {
			u.theme = t
		} else {
			logger.WithContext(ctx).Warn().Str("theme", raw).Msg("Ignoring unknown stored theme")
		}
	}
	return u
}

func (u *ThemeUsecase) Theme() domain.Theme {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.theme
}

// Subscribe calls fn once with the current theme, then again after every
// change.
func (u *ThemeUsecase) Subscribe(fn ThemeObserver) {
	u.mu.Lock()
	u.observers = append(u.observers, fn)
	theme := u.theme
	u.mu.Unlock()

	fn(theme)
}

// ToggleTheme flips between light and dark and returns the new theme.
func (u *ThemeUsecase) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	return u.change(ctx, func(current domain.Theme) domain.Theme {
		return current.Toggled()
	})
}

// SetTheme switches to theme. Setting the current theme again changes nothing
// and notifies nobody.
func (u *ThemeUsecase) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	_, err := u.change(ctx, func(domain.Theme) domain.Theme { return theme })
	return err
}

func (u *ThemeUsecase) change(ctx context.Context, next func(current domain.Theme) domain.Theme) (domain.Theme, error) {
	u.mu.Lock()
	theme := next(u.theme)
	if theme == u.theme {
		u.mu.Unlock()
		return theme, nil
	}
	u.theme = theme
	err := flushRaw(ctx, u.kv, themeStore, domain.KeyTheme, string(theme))
	observers := append([]ThemeObserver(nil), u.observers...)
	u.mu.Unlock()

	recordMutation(themeStore, "set")
	metrics.ThemeChanges.WithLabelValues(string(theme)).Inc()

	// Observers run after the lock is released so they may read the theme.
	notify(observers, theme)
	return theme, err
}

func notify(observers []ThemeObserver, theme domain.Theme) {
	for _, fn := range observers {
		fn(theme)
	}
}
