// Package store implements the credential and resource stores over a plain
// database/sql handle. Every resource lookup is filtered by owner; a row that
// exists but belongs to someone else is indistinguishable from a missing one.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound covers both absent rows and rows owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when registering an existing username.
	ErrDuplicateUsername = errors.New("username already taken")
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	// modernc.org/sqlite reports "UNIQUE constraint failed: users.username".
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
