package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by every domain repository. It carries either the pooled
// connection or the transaction the repository was rebound to.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB scopes the connection to ctx. A nil ctx returns the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// Bind rebinds to tx. A nil tx keeps the current handle, so services can call
// WithTx unconditionally.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx != nil {
		b.conn = tx
	}
	return b
}

// First runs q into a fresh T. gorm.ErrRecordNotFound is returned as is so
// services can map it to their own not-found error.
func First[T any](q *gorm.DB) (*T, error) {
	row := new(T)
	if err := q.First(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Affected unpacks a conditional write. Callers treat zero rows as a lost
// race or a missing row, never as success.
func Affected(res *gorm.DB) (int64, error) {
	return res.RowsAffected, res.Error
}
