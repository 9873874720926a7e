package requestctx

import (
	"context"

	"marina/internal/domain/auth"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	principalKey ctxKey = "principal"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithPrincipal(ctx context.Context, user auth.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

func GetPrincipal(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(principalKey).(auth.User)
	return user, ok
}
