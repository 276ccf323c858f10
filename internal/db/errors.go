package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const pgForeignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err comes from a foreign key
// constraint, whether or not gorm translated it.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return true
		case sqlite3.ErrConstraintTrigger:
			// ON DELETE RESTRICT on an older schema.
			return strings.Contains(liteErr.Error(), "FOREIGN KEY constraint failed")
		}
	}
	return false
}
