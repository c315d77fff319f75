package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the driver reacts to
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isPgDuplicateError reports a lost race between two inserts of the same id
func isPgDuplicateError(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func isPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isPgUndefinedTableError reports a collection whose table was never created
func isPgUndefinedTableError(err error) bool {
	return pgCode(err) == codeUndefinedTable
}
