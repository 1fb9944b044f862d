package gormrepo

import (
	"context"
	"database/sql"

	"turfcontrol/internal/app/ports"

	"gorm.io/gorm"
)

type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

// RunInTx runs fn in a SERIALIZABLE transaction. A serialization failure is
// reported as ports.ErrConflict so callers can retry.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if v, ok := ctx.Value(txKey).(*gorm.DB); ok && v != nil {
		return fn(ctx)
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if isSerializationFailure(err) {
		return ports.ErrConflict
	}
	return err
}
