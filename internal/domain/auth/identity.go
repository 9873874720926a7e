package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var DefaultRoles = []string{RoleAdmin, RoleUser}

// User is the application identity of an authenticated caller.
type User struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}

func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IdentityResolver turns the authenticated caller of ctx into a User.
// A nil User with a nil error means the caller cannot be resolved.
type IdentityResolver interface {
	Resolve(ctx context.Context) (*User, error)
}

var ErrInvalidRole = errors.New("invalid role")

func ValidRole(role string) bool {
	return slices.Contains(DefaultRoles, role)
}

// CheckRoles rejects an empty role set or any role outside DefaultRoles.
func CheckRoles(roles []string) error {
	if len(roles) == 0 {
		return fmt.Errorf("%w: no roles", ErrInvalidRole)
	}
	for _, role := range roles {
		if !ValidRole(role) {
			return fmt.Errorf("%w: %q", ErrInvalidRole, role)
		}
	}
	return nil
}

// KnownRoles keeps only the valid roles of roles, in order.
func KnownRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		if ValidRole(role) {
			out = append(out, role)
		}
	}
	return out
}
