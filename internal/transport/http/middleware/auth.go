package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"marina/internal/domain/auth"
	"marina/internal/platform/requestctx"
)

// Auth attaches the principal of a valid bearer token to the request.
// Requests without a usable token continue anonymously.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				slog.Debug("bearer token rejected", "err", err, "requestId", GetRequestID(r.Context()))
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestctx.WithPrincipal(r.Context(), claims.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.User, bool) {
	return requestctx.GetPrincipal(ctx)
}

// ClaimsResolver resolves the caller from the principal placed on the
// context by Auth.
type ClaimsResolver struct{}

func (ClaimsResolver) Resolve(ctx context.Context) (*auth.User, error) {
	user, ok := GetUser(ctx)
	if !ok || strings.TrimSpace(user.Email) == "" {
		return nil, nil
	}
	return &user, nil
}
