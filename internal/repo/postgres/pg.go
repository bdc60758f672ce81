// Package postgres holds the pgx-backed repositories. Repositories observe
// their logical operations through the shared prometheus collector when one
// is wired; a nil collector keeps them usable in tests.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	return false
}
