package postgres

import (
	"context"
	"errors"

	"github.com/galleryhub/galleryhub/internal/domain/setting"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingColumns = `key, value, type, category, public, updated_at`

type SettingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSettingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SettingsRepo {
	return &SettingsRepo{pool: pool, prom: prom}
}

func (r *SettingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func scanSetting(row pgx.Row) (setting.Setting, error) {
	var s setting.Setting

	err := row.Scan(&s.Key, &s.Value, &s.Type, &s.Category, &s.Public, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return setting.Setting{}, setting.ErrNotFound
		}

		return setting.Setting{}, err
	}

	return s, nil
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (setting.Setting, error) {
	var s setting.Setting
	var err error

	err = r.observe("settings.get", func() error {
		s, err = scanSetting(r.pool.QueryRow(ctx,
			`SELECT `+settingColumns+` FROM settings WHERE key = $1`, key))
		return err
	})

	return s, err
}

func (r *SettingsRepo) List(ctx context.Context) ([]setting.Setting, error) {
	return r.list(ctx, "settings.list",
		`SELECT `+settingColumns+` FROM settings ORDER BY category, key`)
}

// ListPublic returns only the settings flagged for unauthenticated exposure.
func (r *SettingsRepo) ListPublic(ctx context.Context) ([]setting.Setting, error) {
	return r.list(ctx, "settings.list_public",
		`SELECT `+settingColumns+` FROM settings WHERE public ORDER BY category, key`)
}

func (r *SettingsRepo) list(ctx context.Context, op, query string) ([]setting.Setting, error) {
	out := []setting.Setting{}

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			s, err := scanSetting(rows)

			if err != nil {
				return err
			}

			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Upsert writes one key. Bulk updates call this per key; there is no
// transactional atomicity across keys and the operation is idempotent.
func (r *SettingsRepo) Upsert(ctx context.Context, s setting.Setting) (setting.Setting, error) {
	var out setting.Setting
	var err error

	err = r.observe("settings.upsert", func() error {
		out, err = scanSetting(r.pool.QueryRow(ctx,
			`INSERT INTO settings (key, value, type, category, public, updated_at)
			 VALUES ($1,$2,$3,$4,$5,NOW())
			 ON CONFLICT (key) DO UPDATE
			 SET value = EXCLUDED.value,
			     type = EXCLUDED.type,
			     category = EXCLUDED.category,
			     public = EXCLUDED.public,
			     updated_at = NOW()
			 RETURNING `+settingColumns,
			s.Key, s.Value, s.Type, s.Category, s.Public,
		))
		return err
	})

	return out, err
}

// UpsertValue writes only the value of a key. An existing setting keeps its
// type, category and public flag; a new key starts as a private string.
func (r *SettingsRepo) UpsertValue(ctx context.Context, key, value string) (setting.Setting, error) {
	var out setting.Setting
	var err error

	err = r.observe("settings.upsert_value", func() error {
		out, err = scanSetting(r.pool.QueryRow(ctx,
			`INSERT INTO settings (key, value, type, category, public, updated_at)
			 VALUES ($1,$2,$3,'',false,NOW())
			 ON CONFLICT (key) DO UPDATE
			 SET value = EXCLUDED.value,
			     updated_at = NOW()
			 RETURNING `+settingColumns,
			key, value, setting.TypeString,
		))
		return err
	})

	return out, err
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	return r.observe("settings.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return setting.ErrNotFound
		}

		return nil
	})
}
