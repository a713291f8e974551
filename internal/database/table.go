package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Table writes one entity store through to its database table.
// It satisfies store.Sink.
type Table[T any] struct {
	db *gorm.DB
}

func NewTable[T any](db *gorm.DB) *Table[T] {
	return &Table[T]{db: db}
}

// Save inserts rec, or overwrites every column of the row with the same id.
func (t *Table[T]) Save(ctx context.Context, rec *T) error {
	if err := upsert(conn(ctx, t.db), rec).Error; err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id uint) error {
	if err := conn(ctx, t.db).Delete(new(T), id).Error; err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

type txKey struct{}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Transaction returns a runner for dealership.Registry.Atomic: fn runs in one
// transaction, and every Table write made with the context it receives
// joins that transaction.
func Transaction(db *gorm.DB) func(ctx context.Context, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return conn(ctx, db).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
	}
}

func upsert(db *gorm.DB, value any) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(value)
}
