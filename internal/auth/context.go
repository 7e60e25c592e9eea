package auth

import (
	"context"

	"github.com/mkarpenko/campushub/internal/model"
)

type contextKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	User  *model.User
	Token string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func UserID(ctx context.Context) int64 {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.User == nil {
		return 0
	}
	return id.User.ID
}
