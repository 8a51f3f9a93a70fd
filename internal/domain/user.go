package domain

import "context"

type ContextKey string

const SessionContextKey ContextKey = "session"

// IdentityProvider resolves the signed-in user from stored credentials.
type IdentityProvider interface {
	UserID(ctx context.Context) (string, bool)
}

// CredentialChecker reports whether any credential is stored at all.
type CredentialChecker interface {
	HasCredential(ctx context.Context) bool
}
