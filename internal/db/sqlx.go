package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// SQLX exposes the gorm pool to sqlx for hand-written read queries. The two
// share connections, so only the gorm side is ever closed.
func SQLX(gdb *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	driverName := "sqlite3"
	if Dialect(gdb) == "postgres" {
		driverName = "pgx"
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
