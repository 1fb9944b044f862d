package gormrepo

import (
	"context"
	"errors"
	"time"

	"turfcontrol/internal/adapter/repo/gorm/model"
	"turfcontrol/internal/app/ports"

	"gorm.io/gorm"
)

type PlayerCredentialRepo struct {
	db *gorm.DB
}

func NewPlayerCredentialRepo(db *gorm.DB) PlayerCredentialRepo {
	return PlayerCredentialRepo{db: db}
}

func (r PlayerCredentialRepo) Create(ctx context.Context, credential ports.PlayerCredentialRecord) error {
	row := model.PlayerCredential{
		PlayerID:  credential.PlayerID,
		KeySalt:   credential.KeySalt,
		KeyHash:   credential.KeyHash,
		Status:    credential.Status,
		CreatedAt: credential.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	if err := getDBFromCtx(ctx, r.db).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r PlayerCredentialRepo) GetByPlayerID(ctx context.Context, playerID string) (ports.PlayerCredentialRecord, error) {
	var row model.PlayerCredential
	if err := getDBFromCtx(ctx, r.db).Where(&model.PlayerCredential{PlayerID: playerID}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PlayerCredentialRecord{}, ports.ErrNotFound
		}
		return ports.PlayerCredentialRecord{}, err
	}
	return ports.PlayerCredentialRecord{
		PlayerID:  row.PlayerID,
		KeySalt:   row.KeySalt,
		KeyHash:   row.KeyHash,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
	}, nil
}
