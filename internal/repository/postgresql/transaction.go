package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/database"
)

type txKey struct{}

// WithTransaction runs fn in a transaction and commits when it returns nil.
// Calls nested under an outer WithTransaction become savepoints of it, and
// repositories given the ctx passed to fn share the transaction.
func WithTransaction(ctx context.Context, db *database.DB, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, GetQuerier(ctx, db), func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx), tx)
	})
}

// GetQuerier returns the transaction carried by ctx, or the pool.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}
