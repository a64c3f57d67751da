package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes translated by MapError.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// MapError translates driver errors into domain errors while keeping the
// driver error in the chain. sql.ErrNoRows becomes notFound; unique and
// check constraint violations become conflict. Other errors pass through.
func MapError(err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s", conflict, pgErr.ConstraintName)
		}
	}

	return err
}
