// Package memory holds map-backed repositories used for zero-config demo
// deployments and handler tests. They implement the same interfaces the
// handlers declare for the postgres repositories.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/galleryhub/galleryhub/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // keyed by id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return user.User{}, user.ErrEmailTaken
	}

	r.mu.Lock()
	r.items[u.ID] = u
	r.mu.Unlock()

	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		out = append(out, u)
	}

	return out, nil
}

func (r *UsersRepo) UpdateProfile(_ context.Context, id, name, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	for otherID, other := range r.items {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.mutate(id, func(u *user.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *UsersRepo) UpdateRole(_ context.Context, id, role string) error {
	if !user.ValidRole(role) {
		return user.ErrBadRole
	}

	return r.mutate(id, func(u *user.User) {
		u.Role = role
	})
}

func (r *UsersRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.mutate(id, func(u *user.User) {
		u.Active = active
	})
}

func (r *UsersRepo) TouchLastLogin(_ context.Context, id string) error {
	now := time.Now().UTC()

	return r.mutate(id, func(u *user.User) {
		u.LastLoginAt = &now
	})
}

func (r *UsersRepo) mutate(id string, fn func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}
