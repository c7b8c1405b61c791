package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/syssam/dynrepo"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // Cannot add or update a child row
	mysqlCheckViolation   = 3819
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness
// constraint violation, such as a duplicate primary key.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		if code := se.Code(); code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}
	// Drivers without extended result codes only report the message.
	return containsAny(err.Error(), "Error 1062", "UNIQUE constraint failed")
}

// IsForeignKeyConstraintError reports if the error resulted from a database
// foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlForeignKeyParent || me.Number == mysqlForeignKeyChild) {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return containsAny(err.Error(), "Error 1451", "Error 1452", "FOREIGN KEY constraint failed")
}

// IsCheckConstraintError reports if the error resulted from a database check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlCheckViolation {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK {
		return true
	}
	return containsAny(err.Error(), "Error 3819", "CHECK constraint failed")
}

// translate converts constraint violations into *dynrepo.ConstraintError
// and leaves every other error untouched.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case dynrepo.IsConstraintError(err):
		return err
	case IsUniqueConstraintError(err):
		return dynrepo.NewConstraintError("duplicate key", err)
	case IsForeignKeyConstraintError(err):
		return dynrepo.NewConstraintError("foreign key", err)
	case IsCheckConstraintError(err):
		return dynrepo.NewConstraintError("check", err)
	default:
		return err
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
