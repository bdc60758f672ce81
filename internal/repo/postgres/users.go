package postgres

import (
	"context"
	"errors"

	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, name, role, active, last_login_at, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Active,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, active, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Active, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []user.User{}
	}

	return out, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id, name, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			 SET name = $2, email = $3, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, name, email,
		))
		return err
	})

	if err != nil && IsUniqueViolation(err) {
		return user.User{}, user.ErrEmailTaken
	}

	return u, err
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "users.update_password",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id, role string) error {
	if !user.ValidRole(role) {
		return user.ErrBadRole
	}

	return r.exec(ctx, "users.update_role",
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		id, role)
}

func (r *UsersRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, "users.set_active",
		`UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1`,
		id, active)
}

// TouchLastLogin is best effort; login succeeds even if the stamp fails.
func (r *UsersRepo) TouchLastLogin(ctx context.Context, id string) error {
	return r.exec(ctx, "users.touch_last_login",
		`UPDATE users SET last_login_at = NOW() WHERE id = $1`,
		id)
}

func (r *UsersRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	return r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, sql, args...)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}
