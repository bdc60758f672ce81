package postgres

import (
	"context"
	"errors"

	"github.com/galleryhub/galleryhub/internal/domain/contact"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewContactRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContactRepo {
	return &ContactRepo{pool: pool, prom: prom}
}

func (r *ContactRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func (r *ContactRepo) Create(ctx context.Context, m contact.Message) (contact.Message, error) {
	err := r.observe("contact.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO contact_messages (id, name, email, subject, body, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.Name, m.Email, m.Subject, m.Body, m.CreatedAt,
		)
		return err
	})

	if err != nil {
		return contact.Message{}, err
	}

	return m, nil
}

func (r *ContactRepo) GetByID(ctx context.Context, id string) (contact.Message, error) {
	var m contact.Message
	var err error

	err = r.observe("contact.get_by_id", func() error {
		err = r.pool.QueryRow(ctx,
			`SELECT id, name, email, subject, body, created_at
			 FROM contact_messages WHERE id = $1`, id,
		).Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			return contact.ErrNotFound
		}

		return err
	})

	if err != nil {
		return contact.Message{}, err
	}

	return m, nil
}

func (r *ContactRepo) List(ctx context.Context, limit, offset int) ([]contact.Message, int, error) {
	out := []contact.Message{}
	total := 0

	err := r.observe("contact.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, email, subject, body, created_at, COUNT(*) OVER() AS total
			 FROM contact_messages
			 ORDER BY created_at DESC, id ASC
			 LIMIT $1 OFFSET $2`, limit, offset)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var m contact.Message
			var t int

			if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt, &t); err != nil {
				return err
			}

			total = t
			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}
