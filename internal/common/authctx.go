package common

import (
	"context"
	"fmt"
)

type ctxKey string

const userIDKey ctxKey = "auth/user-id"

// WithUserID stores the authenticated user identifier on the provided context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// MatchesUser reports whether id, compared in its printed form, is the
// authenticated user. Unauthenticated contexts and absent ids always match.
func MatchesUser(ctx context.Context, id any) bool {
	authed, ok := UserID(ctx)
	if !ok || id == nil {
		return true
	}
	return fmt.Sprint(id) == authed
}
