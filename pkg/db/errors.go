package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports a unique violation, optionally on one named
// constraint. Postgres errors are matched on SQLSTATE; the sqlite driver used
// in tests only offers its message text.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if pg := pkgerrors.Postgres(err); pg != nil {
		return pg.Code == uniqueViolationCode && (constraint == "" || pg.Constraint == constraint)
	}

	msg := err.Error()
	if constraint != "" {
		return strings.Contains(msg, constraint)
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
