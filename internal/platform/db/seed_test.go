package db

import (
	"context"
	"testing"

	"marina/internal/domain/auth"
	"marina/internal/platform/config"
)

type recordingAccounts struct {
	users  []auth.User
	hashes []string
}

func (r *recordingAccounts) Upsert(_ context.Context, user auth.User, hash string) error {
	if err := auth.CheckRoles(user.Roles); err != nil {
		return err
	}
	r.users = append(r.users, user)
	r.hashes = append(r.hashes, hash)
	return nil
}

func TestSeedSkipsWithoutCredentials(t *testing.T) {
	accounts := &recordingAccounts{}
	if err := Seed(context.Background(), accounts, config.Config{SeedAdminEmail: "admin@marina.ch"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if len(accounts.users) != 0 {
		t.Fatalf("expected no accounts, got %d", len(accounts.users))
	}
}

func TestSeedCreatesAdmin(t *testing.T) {
	accounts := &recordingAccounts{}
	cfg := config.Config{SeedAdminUsername: "admin", SeedAdminEmail: "admin@marina.ch", SeedAdminPassword: "ChangeMe123!"}
	if err := Seed(context.Background(), accounts, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if len(accounts.users) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts.users))
	}
	admin := accounts.users[0]
	if !admin.HasRole(auth.RoleAdmin) || !admin.HasRole(auth.RoleUser) {
		t.Fatalf("expected admin and user roles, got %v", admin.Roles)
	}
	if err := auth.CheckPassword(accounts.hashes[0], "ChangeMe123!"); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}
