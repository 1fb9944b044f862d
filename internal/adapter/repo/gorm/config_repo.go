package gormrepo

import (
	"context"
	"errors"
	"time"

	"turfcontrol/internal/adapter/repo/gorm/model"
	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The registry is a single row.
const configRowID = 1

type ConfigRepo struct {
	db *gorm.DB
}

func NewConfigRepo(db *gorm.DB) ConfigRepo {
	return ConfigRepo{db: db}
}

func (r ConfigRepo) Get(ctx context.Context) (turf.Config, error) {
	return r.get(getDBFromCtx(ctx, r.db))
}

func (r ConfigRepo) GetForUpdate(ctx context.Context) (turf.Config, error) {
	return r.get(getDBFromCtx(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r ConfigRepo) get(db *gorm.DB) (turf.Config, error) {
	var m model.TurfConfig
	if err := db.Where("id = ?", configRowID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return turf.Config{}, ports.ErrNotFound
		}
		return turf.Config{}, err
	}
	rate, err := parseAmount(m.BaseIncomeRate)
	if err != nil {
		return turf.Config{}, err
	}
	return turf.Config{
		Authority:             m.Authority,
		TreasuryAccount:       m.TreasuryAccount,
		TotalPlots:            uint32(m.TotalPlots),
		PlotsIssued:           uint32(m.PlotsIssued),
		BaseIncomeRate:        rate,
		TaxRateBps:            uint16(m.TaxRateBps),
		AttackCooldownSeconds: m.AttackCooldownSeconds,
		Active:                m.Active,
		Version:               m.Version,
	}, nil
}

func (r ConfigRepo) Create(ctx context.Context, cfg turf.Config) error {
	m := model.TurfConfig{
		ID:                    configRowID,
		Authority:             cfg.Authority,
		TreasuryAccount:       cfg.TreasuryAccount,
		TotalPlots:            int64(cfg.TotalPlots),
		PlotsIssued:           int64(cfg.PlotsIssued),
		BaseIncomeRate:        formatAmount(cfg.BaseIncomeRate),
		TaxRateBps:            int32(cfg.TaxRateBps),
		AttackCooldownSeconds: cfg.AttackCooldownSeconds,
		Active:                cfg.Active,
		Version:               cfg.Version,
		UpdatedAt:             time.Now().UTC(),
	}
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r ConfigRepo) SaveWithVersion(ctx context.Context, cfg turf.Config, expectedVersion int64) error {
	updates := map[string]any{
		"authority":               cfg.Authority,
		"treasury_account":        cfg.TreasuryAccount,
		"total_plots":             int64(cfg.TotalPlots),
		"plots_issued":            int64(cfg.PlotsIssued),
		"base_income_rate":        formatAmount(cfg.BaseIncomeRate),
		"tax_rate_bps":            int32(cfg.TaxRateBps),
		"attack_cooldown_seconds": cfg.AttackCooldownSeconds,
		"active":                  cfg.Active,
		"version":                 cfg.Version,
		"updated_at":              time.Now().UTC(),
	}
	res := getDBFromCtx(ctx, r.db).Model(&model.TurfConfig{}).
		Where("id = ? AND version = ?", configRowID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
