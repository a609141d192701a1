// Package auth resolves the signed-in user from the hosted identity provider's tokens.
package auth

import (
	"context"
	"time"
)

type ctxKey int

const userKey ctxKey = iota

// User is the verified identity attached to a request.
type User struct {
	ID        string
	Email     string
	ExpiresAt time.Time
	Raw       map[string]any
}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok && user != nil && user.ID != ""
}
