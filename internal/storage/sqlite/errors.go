package sqlite

import (
	"errors"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/mattn/go-sqlite3"
)

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// translate maps unique violations onto conflict and passes other errors through
func translate(err error, conflict *domain.Error) error {
	if isUniqueViolation(err) {
		return conflict.WithCause(err)
	}
	return err
}

// utc normalizes timestamps so stored values compare lexically
func utc(t time.Time) time.Time {
	return t.UTC()
}
