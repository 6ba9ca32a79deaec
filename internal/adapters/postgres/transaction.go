package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rafaelleal24/product-catalog/internal/core/port"
)

type txKey struct{}

// WithTx returns a context carrying tx; repositories pick it up via Conn.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Conn returns the transaction stored in ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type TransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) port.TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction nests as a savepoint when ctx already carries a transaction.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return Conn(ctx, tm.db).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
