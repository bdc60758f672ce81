package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
	ErrInactive     = errors.New("user is inactive")
	ErrBadRole      = errors.New("unknown role")
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// DemoUserID is the reserved subject for the synthetic demo identity. Tokens
// carrying it are resolved without touching the user store.
const DemoUserID = "demo-admin"

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// CheckActive returns ErrInactive for deactivated accounts. Callers resolving
// an identity run this before letting the account act.
func (u User) CheckActive() error {
	if !u.Active {
		return ErrInactive
	}

	return nil
}

// Role policy: two flat predicates, no hierarchy.

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsAdminOrEditor() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}
