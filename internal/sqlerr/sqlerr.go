// Package sqlerr normalises postgres and sqlite driver errors so callers can
// switch on a single set of codes.
package sqlerr

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

type Code string

const (
	Other               Code = "other"
	UniqueViolation     Code = "unique_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
)

// Error is a driver error reduced to what the API layer needs.
type Error struct {
	Code           Code
	DatabaseCode   string
	Message        string
	TableName      string
	ColumnName     string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// ErrCode reports the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// Convert returns the normalised form of a postgres or sqlite driver error
// found in err's chain, or nil when there is none.
func Convert(err error) *Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return convertPgError(pgErr)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return convertSQLiteError(liteErr)
	}

	return nil
}

// MapPgCode maps an SQLSTATE to a Code.
func MapPgCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	}
	return Other
}

func convertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapPgCode(src.Code),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// MapSQLiteCode maps an extended sqlite result code to a Code.
func MapSQLiteCode(code sqlite3.ErrNoExtended) Code {
	switch code {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return UniqueViolation
	case sqlite3.ErrConstraintForeignKey:
		return ForeignKeyViolation
	case sqlite3.ErrConstraintNotNull:
		return NotNullViolation
	case sqlite3.ErrConstraintCheck:
		return CheckViolation
	}
	return Other
}

// convertSQLiteError pulls table and column out of messages such as
// "NOT NULL constraint failed: todos.title".
func convertSQLiteError(src sqlite3.Error) *Error {
	out := &Error{
		Code:         MapSQLiteCode(src.ExtendedCode),
		DatabaseCode: strconv.Itoa(int(src.ExtendedCode)),
		Message:      src.Error(),
		driverErr:    src,
	}

	if _, detail, ok := strings.Cut(src.Error(), "constraint failed: "); ok {
		// Composite unique keys list several columns; the first is enough.
		detail, _, _ = strings.Cut(detail, ",")
		if table, column, ok := strings.Cut(strings.TrimSpace(detail), "."); ok {
			out.TableName = table
			out.ColumnName = column
		} else {
			out.ConstraintName = strings.TrimSpace(detail)
		}
	}
	return out
}
