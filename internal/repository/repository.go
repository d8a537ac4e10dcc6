package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// conn returns tx when the caller runs inside a transaction, otherwise the
// repository's own handle.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// lockRows adds a row lock of the given strength ("UPDATE", "SHARE") on
// Postgres. SQLite serializes writers on its own and has no FOR clause.
func lockRows(q *gorm.DB, strength string) *gorm.DB {
	if q.Dialector.Name() != "postgres" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: strength})
}

// notFoundAsNil maps gorm.ErrRecordNotFound onto a nil row.
func notFoundAsNil[T any](row *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
