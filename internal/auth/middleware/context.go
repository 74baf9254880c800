package middleware

import (
	"context"

	"github.com/examforge/mcq-portal/internal/auth"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if v := ctx.Value(ctxKeyClaims); v != nil {
		if c, ok := v.(*auth.Claims); ok {
			return c
		}
	}
	return nil
}

// SubjectFromContext returns the authenticated user id, or "" when the
// request carries no verified session.
func SubjectFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}
