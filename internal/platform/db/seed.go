package db

import (
	"context"
	"strings"

	"marina/internal/domain/auth"
	"marina/internal/platform/config"
)

type AccountWriter interface {
	Upsert(ctx context.Context, user auth.User, passwordHash string) error
}

// Seed provisions the bootstrap administrator. It is a no-op when no admin
// email or password is configured.
func Seed(ctx context.Context, accounts AccountWriter, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	return accounts.Upsert(ctx, auth.User{
		Username:  cfg.SeedAdminUsername,
		Email:     email,
		FirstName: "Marina",
		LastName:  "Admin",
		Roles:     []string{auth.RoleAdmin, auth.RoleUser},
	}, hash)
}
