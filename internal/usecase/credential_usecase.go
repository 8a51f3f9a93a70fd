package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

// CredentialUsecase reads (and, for the login surface, writes) the stored token.
type CredentialUsecase struct {
	kv     domain.KeyValueStore
	secret []byte
}

// NewCredentialUsecase creates a credential reader over kv. With a non-empty
// secret, tokens must also carry a valid HMAC signature to yield a user id.
func NewCredentialUsecase(kv domain.KeyValueStore, secret string) *CredentialUsecase {
	u := &CredentialUsecase{kv: kv}
	if secret != "" {
		u.secret = []byte(secret)
	}
	return u
}

// Token returns the stored credential, if any.
func (u *CredentialUsecase) Token(ctx context.Context) (string, bool) {
	token, found, err := u.kv.Get(ctx, domain.KeyToken)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Failed to read stored credential")
		return "", false
	}
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// HasCredential reports whether a non-empty token is stored. It does not decode it.
func (u *CredentialUsecase) HasCredential(ctx context.Context) bool {
	_, ok := u.Token(ctx)
	return ok
}

// UserID extracts the user id from the stored token. Every failure (no token,
// wrong shape, bad encoding, no sub/userId claim, bad signature) yields false.
func (u *CredentialUsecase) UserID(ctx context.Context) (string, bool) {
	token, ok := u.Token(ctx)
	if !ok {
		return "", false
	}
	id, err := utils.UserIDFromToken(token, u.secret)
	if err != nil {
		logger.WithContext(ctx).Debug().Err(err).Msg("Stored credential is not usable")
		return "", false
	}
	return id, true
}

// Store saves token as the current credential.
func (u *CredentialUsecase) Store(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", domain.ErrInvalidCredential)
	}
	return flushRaw(ctx, u.kv, "credential", domain.KeyToken, token)
}

// Clear forgets the stored credential (logout).
func (u *CredentialUsecase) Clear(ctx context.Context) error {
	return removeKey(ctx, u.kv, "credential", domain.KeyToken)
}

var (
	_ domain.IdentityProvider  = (*CredentialUsecase)(nil)
	_ domain.CredentialChecker = (*CredentialUsecase)(nil)
)
