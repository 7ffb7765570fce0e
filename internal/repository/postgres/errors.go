package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgErrCode reports whether err is a PgError carrying the given SQLSTATE.
func pgErrCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsPgDuplicateError matches unique_violation (23505). Repositories translate
// these into domain.ConflictError so handlers answer 409.
func IsPgDuplicateError(err error) bool {
	return pgErrCode(err, "23505")
}

// IsPgNoRowsError matches pgx's empty-result error, which maps to
// domain.ErrNotFound.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError matches foreign_key_violation (23503), hit when a row
// references a novel or profile that was deleted out from under it.
func IsPgForeignKeyError(err error) bool {
	return pgErrCode(err, "23503")
}
