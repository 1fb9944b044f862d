package gormrepo

import (
	"context"
	"errors"
	"time"

	"turfcontrol/internal/adapter/repo/gorm/model"
	"turfcontrol/internal/app/ports"

	"gorm.io/gorm"
)

type CustodyRepo struct {
	db *gorm.DB
}

func NewCustodyRepo(db *gorm.DB) CustodyRepo {
	return CustodyRepo{db: db}
}

func (r CustodyRepo) MintOne(ctx context.Context, assetID, recipient string) error {
	m := model.AssetCustody{AssetID: assetID, Holder: recipient, UpdatedAt: time.Now().UTC()}
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r CustodyRepo) TransferOne(ctx context.Context, assetID, from, to string) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.AssetCustody{}).
		Where("asset_id = ? AND holder = ?", assetID, from).
		Updates(map[string]any{"holder": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.OwnerOf(ctx, assetID); err != nil {
			return err
		}
		return ports.ErrConflict
	}
	return nil
}

func (r CustodyRepo) OwnerOf(ctx context.Context, assetID string) (string, error) {
	var m model.AssetCustody
	if err := getDBFromCtx(ctx, r.db).Where(&model.AssetCustody{AssetID: assetID}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ports.ErrNotFound
		}
		return "", err
	}
	return m.Holder, nil
}
