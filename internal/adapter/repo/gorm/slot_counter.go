package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

const slotRowID = 1

// SlotCounter advances the shared platform slot row.
type SlotCounter struct {
	db *gorm.DB
}

func NewSlotCounter(db *gorm.DB) SlotCounter {
	return SlotCounter{db: db}
}

func (c SlotCounter) Next(ctx context.Context) (uint64, error) {
	var slot int64
	err := getDBFromCtx(ctx, c.db).
		Raw(`UPDATE platform_slots SET slot = slot + 1 WHERE id = ? RETURNING slot`, slotRowID).
		Scan(&slot).Error
	if err != nil {
		return 0, err
	}
	return uint64(slot), nil
}
