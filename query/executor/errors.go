package executor

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// MySQL error numbers for constraint failures.
const (
	mysqlDupEntry        = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlBadNull         = 1048
	mysqlCheckViolated   = 3819
)

// IsConstraintViolation reports whether err carries a unique, foreign key,
// not-null or check violation from the MySQL, PostgreSQL or SQLite driver.
func IsConstraintViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry, mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlBadNull, mysqlCheckViolated:
			return true
		}
		return false
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		// class 23: integrity constraint violation
		return pe.Code.Class() == "23"
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}
