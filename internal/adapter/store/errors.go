package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// mapError converts driver errors to domain errors.
// context.DeadlineExceeded and context.Canceled pass through.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, key, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	if sentinel := constraintError(err); sentinel != nil {
		return fmt.Errorf("%s %s: %w: %v", entity, key, sentinel, err)
	}

	return fmt.Errorf("%s %s: %w", entity, key, err)
}

// constraintError returns the domain error for a constraint violation
// reported by either driver, or nil.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return domain.ErrIDCollision
		case "23503": // foreign_key_violation
			return domain.ErrNotFound
		case "23514": // check_violation
			return domain.ErrValidation
		}
		return nil
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return domain.ErrIDCollision
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return domain.ErrNotFound
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return domain.ErrValidation
		}
	}
	return nil
}
