package db

import (
	"context"
	"errors"
	"time"

	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/galleryhub/galleryhub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds an administrator account from config when none with
// that email exists yet. A blank admin email/password disables seeding.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         user.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, active, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
