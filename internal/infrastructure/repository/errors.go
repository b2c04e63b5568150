package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKey reports a unique index violation. Postgres errors are
// translated to gorm.ErrDuplicatedKey by the dialector; the sqlite driver
// only reports it in the message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
