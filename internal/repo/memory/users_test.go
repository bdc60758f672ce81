package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/galleryhub/galleryhub/internal/domain/user"
)

func seedUser(t *testing.T, r *UsersRepo) user.User {
	t.Helper()

	u, err := r.Create(context.Background(), user.User{
		ID:     "u-1",
		Email:  "artist@example.com",
		Name:   "Artist",
		Role:   user.RoleViewer,
		Active: true,
	})

	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return u
}

func TestUsersRepoRejectsUnknownRole(t *testing.T) {
	r := NewUsersRepo()
	u := seedUser(t, r)

	err := r.UpdateRole(context.Background(), u.ID, "superuser")

	if !errors.Is(err, user.ErrBadRole) {
		t.Fatalf("got %v, want ErrBadRole", err)
	}

	got, err := r.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Role != user.RoleViewer {
		t.Fatalf("role changed to %q on a rejected update", got.Role)
	}

	if err := r.UpdateRole(context.Background(), u.ID, user.RoleEditor); err != nil {
		t.Fatalf("valid role update failed: %v", err)
	}
}

func TestUsersRepoRejectsDuplicateEmail(t *testing.T) {
	r := NewUsersRepo()
	seedUser(t, r)

	_, err := r.Create(context.Background(), user.User{
		ID:    "u-2",
		Email: "ARTIST@example.com",
		Role:  user.RoleViewer,
	})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}
