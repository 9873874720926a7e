package testutil

import (
	"testing"
	"time"

	"marina/internal/domain/auth"
)

// Token signs a bearer token for user with secret.
func Token(t *testing.T, secret string, user auth.User) string {
	t.Helper()
	token, _, err := auth.GenerateToken(secret, auth.ClaimsFor(user), time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func Admin() auth.User {
	return auth.User{Username: "admin", Email: "admin@marina.ch", FirstName: "Ada", LastName: "Admin", Roles: []string{auth.RoleAdmin}}
}

func Housi() auth.User {
	return auth.User{Username: "hmousi", Email: "housi.mousi@marina.ch", FirstName: "Housi", LastName: "Mousi", Roles: []string{auth.RoleUser}}
}
