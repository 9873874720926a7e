package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is a login-capable user row.
type Account struct {
	ID           int64
	User         User
	PasswordHash string
}

type AccountStore interface {
	FindByLogin(ctx context.Context, login string) (*Account, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// FindByLogin matches login against username or email.
func (s *Store) FindByLogin(ctx context.Context, login string) (*Account, error) {
	var out Account
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, email, first_name, last_name, password_hash, roles
    FROM users
    WHERE username = $1 OR email = $1
    LIMIT 1
  `, login).Scan(&out.ID, &out.User.Username, &out.User.Email, &out.User.FirstName, &out.User.LastName, &out.PasswordHash, &out.User.Roles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	out.User.Roles = KnownRoles(out.User.Roles)
	return &out, nil
}

// Upsert creates the account or refreshes its profile, roles and password.
func (s *Store) Upsert(ctx context.Context, user User, passwordHash string) error {
	if err := CheckRoles(user.Roles); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO users (username, email, first_name, last_name, password_hash, roles)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (username) DO UPDATE
    SET email = EXCLUDED.email,
        first_name = EXCLUDED.first_name,
        last_name = EXCLUDED.last_name,
        password_hash = EXCLUDED.password_hash,
        roles = EXCLUDED.roles
  `, user.Username, user.Email, user.FirstName, user.LastName, passwordHash, user.Roles)
	return err
}
