package dao

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntryCode = 1062

// isDuplicateEntry reports whether err is a MySQL unique key violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntryCode
	}
	return false
}
