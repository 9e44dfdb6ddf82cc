package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// AuthClaims is what the auth middleware learned from a verified token.
// pasetotoken.Claims satisfies it.
type AuthClaims interface {
	GetUserID() uuid.UUID
	GetSessionID() *uuid.UUID
	GetTokenType() string
	IsExpired() bool
}

func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext returns nil for anonymous requests and for claims
// that have expired since they were attached.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	c, _ := ctx.Value(keyClaims).(AuthClaims)
	if c == nil || c.IsExpired() {
		return nil
	}
	return c
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.GetUserID(), true
	}
	return uuid.Nil, false
}

// SessionIDFromContext is used by logout to revoke the current session.
// Tokens minted without a session report false.
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	c := ClaimsFromContext(ctx)
	if c == nil {
		return uuid.Nil, false
	}
	if sid := c.GetSessionID(); sid != nil {
		return *sid, true
	}
	return uuid.Nil, false
}
