package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/galleryhub/galleryhub/internal/domain/content"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contentColumns = `id, title, slug, body, excerpt, type, status, author_id,
	featured, sort_order, tags, categories, published_at, created_at, updated_at`

type ContentRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewContentRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContentRepo {
	return &ContentRepo{pool: pool, prom: prom}
}

func (r *ContentRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

func scanContent(row pgx.Row) (content.Content, error) {
	var c content.Content
	var authorID *string

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Slug,
		&c.Body,
		&c.Excerpt,
		&c.Type,
		&c.Status,
		&authorID,
		&c.Featured,
		&c.SortOrder,
		&c.Tags,
		&c.Categories,
		&c.PublishedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return content.Content{}, content.ErrNotFound
		}

		return content.Content{}, err
	}

	if authorID != nil {
		c.AuthorID = *authorID
	}

	return c, nil
}

func (r *ContentRepo) Create(ctx context.Context, c content.Content) (content.Content, error) {
	err := r.observe("content.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO content (id, title, slug, body, excerpt, type, status, author_id,
				featured, sort_order, tags, categories, published_at, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			c.ID, c.Title, c.Slug, c.Body, c.Excerpt, c.Type, c.Status, nullable(c.AuthorID),
			c.Featured, c.SortOrder, c.Tags, c.Categories, c.PublishedAt, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})

	if err != nil {
		// The unique index closes the pre-check race: a concurrent
		// duplicate still surfaces as a slug conflict, never a silent
		// overwrite.
		if IsUniqueViolation(err) {
			return content.Content{}, content.ErrSlugTaken
		}

		return content.Content{}, err
	}

	return c, nil
}

func (r *ContentRepo) GetByID(ctx context.Context, id string) (content.Content, error) {
	var c content.Content
	var err error

	err = r.observe("content.get_by_id", func() error {
		c, err = scanContent(r.pool.QueryRow(ctx,
			`SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
		return err
	})

	return c, err
}

func (r *ContentRepo) GetBySlug(ctx context.Context, slug string) (content.Content, error) {
	var c content.Content
	var err error

	err = r.observe("content.get_by_slug", func() error {
		c, err = scanContent(r.pool.QueryRow(ctx,
			`SELECT `+contentColumns+` FROM content WHERE slug = $1`, slug))
		return err
	})

	return c, err
}

// SlugExists is the friendly pre-check before insert/update; uniqueness is
// ultimately enforced by the index.
func (r *ContentRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool

	err := r.observe("content.slug_exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM content WHERE slug = $1 AND id <> $2)`,
			slug, excludeID,
		).Scan(&exists)
	})

	return exists, err
}

func (r *ContentRepo) List(ctx context.Context, filter content.ListFilter) ([]content.Content, int, error) {
	baseQuery := `SELECT ` + contentColumns + `, COUNT(*) OVER() AS total FROM content`

	var conds []string
	var args []interface{}

	argPos := 1

	if filter.Type != nil {
		conds = append(conds, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *filter.Type)
		argPos++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}

	if filter.Tag != nil {
		conds = append(conds, fmt.Sprintf("$%d = ANY(tags)", argPos))
		args = append(args, *filter.Tag)
		argPos++
	}

	if filter.Category != nil {
		conds = append(conds, fmt.Sprintf("$%d = ANY(categories)", argPos))
		args = append(args, *filter.Category)
		argPos++
	}

	if filter.Featured != nil {
		conds = append(conds, fmt.Sprintf("featured = $%d", argPos))
		args = append(args, *filter.Featured)
		argPos++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// Featured first, then newest published, then newest created. Stable
	// tiebreak on id for pagination.
	query += fmt.Sprintf(
		` ORDER BY featured DESC, published_at DESC NULLS LAST, created_at DESC, id ASC
		 LIMIT $%d OFFSET $%d`, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset())

	output := make([]content.Content, 0, filter.Limit)
	total := 0

	err := r.observe("content.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var c content.Content
			var authorID *string
			var t int

			err = rows.Scan(
				&c.ID, &c.Title, &c.Slug, &c.Body, &c.Excerpt, &c.Type, &c.Status,
				&authorID, &c.Featured, &c.SortOrder, &c.Tags, &c.Categories,
				&c.PublishedAt, &c.CreatedAt, &c.UpdatedAt, &t,
			)

			if err != nil {
				return err
			}

			if authorID != nil {
				c.AuthorID = *authorID
			}

			total = t
			output = append(output, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *ContentRepo) Update(ctx context.Context, c content.Content) (content.Content, error) {
	var out content.Content
	var err error

	err = r.observe("content.update", func() error {
		out, err = scanContent(r.pool.QueryRow(ctx,
			`UPDATE content
			 SET title = $2, slug = $3, body = $4, excerpt = $5, type = $6, status = $7,
			     featured = $8, sort_order = $9, tags = $10, categories = $11,
			     published_at = $12, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+contentColumns,
			c.ID, c.Title, c.Slug, c.Body, c.Excerpt, c.Type, c.Status,
			c.Featured, c.SortOrder, c.Tags, c.Categories, c.PublishedAt,
		))
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return content.Content{}, content.ErrSlugTaken
		}

		return content.Content{}, err
	}

	return out, nil
}

func (r *ContentRepo) Delete(ctx context.Context, id string) error {
	return r.observe("content.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return content.ErrNotFound
		}

		return nil
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
