package repositories

import (
	"database/sql"
	"errors"

	intconfig "naco/internal/config"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

func pickDB(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

type rowScanner interface {
	Scan(dest ...any) error
}
