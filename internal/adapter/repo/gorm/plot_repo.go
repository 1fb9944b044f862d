package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"turfcontrol/internal/adapter/repo/gorm/model"
	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlotRepo struct {
	db *gorm.DB
}

func NewPlotRepo(db *gorm.DB) PlotRepo {
	return PlotRepo{db: db}
}

func (r PlotRepo) GetByID(ctx context.Context, plotID string) (turf.Territory, error) {
	return r.first(getDBFromCtx(ctx, r.db).Where("plot_id = ?", plotID))
}

func (r PlotRepo) GetForUpdate(ctx context.Context, plotID string) (turf.Territory, error) {
	return r.first(getDBFromCtx(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("plot_id = ?", plotID))
}

func (r PlotRepo) GetByIndex(ctx context.Context, plotIndex uint16) (turf.Territory, error) {
	return r.first(getDBFromCtx(ctx, r.db).Where("plot_index = ?", int32(plotIndex)))
}

func (r PlotRepo) first(db *gorm.DB) (turf.Territory, error) {
	var m model.Territory
	if err := db.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return turf.Territory{}, ports.ErrNotFound
		}
		return turf.Territory{}, err
	}
	return toDomainTerritory(m)
}

func (r PlotRepo) ListByOwner(ctx context.Context, owner string) ([]turf.Territory, error) {
	rows := []model.Territory{}
	err := getDBFromCtx(ctx, r.db).
		Where(&model.Territory{Owner: owner}).
		Order("plot_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainTerritories(rows)
}

func (r PlotRepo) ListContested(ctx context.Context, startedBefore time.Time, limit int) ([]turf.Territory, error) {
	rows := []model.Territory{}
	query := getDBFromCtx(ctx, r.db).
		Where("under_attack = ? AND contest_started <= ?", true, startedBefore).
		Order("contest_started ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTerritories(rows)
}

func (r PlotRepo) Create(ctx context.Context, t turf.Territory) error {
	if err := t.CheckInvariants(); err != nil {
		return err
	}
	m, err := toModelTerritory(t)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r PlotRepo) SaveWithVersion(ctx context.Context, t turf.Territory, expectedVersion int64) error {
	if err := t.CheckInvariants(); err != nil {
		return err
	}
	m, err := toModelTerritory(t)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"owner":             m.Owner,
		"base_income":       m.BaseIncome,
		"current_income":    m.CurrentIncome,
		"security_level":    m.SecurityLevel,
		"last_income_claim": m.LastIncomeClaim,
		"last_attack_time":  m.LastAttackTime,
		"defense_wins":      m.DefenseWins,
		"attack_wins":       m.AttackWins,
		"under_attack":      m.UnderAttack,
		"contest_started":   m.ContestStarted,
		"contest":           m.Contest,
		"businesses":        m.Businesses,
		"version":           m.Version,
		"updated_at":        time.Now().UTC(),
	}
	res := getDBFromCtx(ctx, r.db).Model(&model.Territory{}).
		Where("plot_id = ? AND version = ?", t.ID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func toModelTerritory(t turf.Territory) (model.Territory, error) {
	businesses := t.Businesses
	if businesses == nil {
		businesses = []turf.Business{}
	}
	bizJSON, err := json.Marshal(businesses)
	if err != nil {
		return model.Territory{}, fmt.Errorf("encode businesses: %w", err)
	}
	contestJSON := "{}"
	var contestStarted time.Time
	if t.Contest != nil {
		b, err := json.Marshal(t.Contest)
		if err != nil {
			return model.Territory{}, fmt.Errorf("encode contest: %w", err)
		}
		contestJSON = string(b)
		contestStarted = t.Contest.StartedAt
	}
	return model.Territory{
		PlotID:          t.ID,
		Owner:           t.Owner,
		District:        string(t.District),
		PlotIndex:       int32(t.PlotIndex),
		BaseIncome:      formatAmount(t.BaseIncome),
		CurrentIncome:   formatAmount(t.CurrentIncome),
		SecurityLevel:   int16(t.SecurityLevel),
		LastIncomeClaim: t.LastIncomeClaim.UTC(),
		LastAttackTime:  t.LastAttackTime.UTC(),
		DefenseWins:     int64(t.DefenseWins),
		AttackWins:      int64(t.AttackWins),
		UnderAttack:     t.UnderAttack,
		ContestStarted:  contestStarted.UTC(),
		Contest:         contestJSON,
		Businesses:      string(bizJSON),
		Version:         t.Version,
	}, nil
}

func toDomainTerritory(m model.Territory) (turf.Territory, error) {
	base, err := parseAmount(m.BaseIncome)
	if err != nil {
		return turf.Territory{}, err
	}
	current, err := parseAmount(m.CurrentIncome)
	if err != nil {
		return turf.Territory{}, err
	}
	businesses := []turf.Business{}
	if m.Businesses != "" {
		if err := json.Unmarshal([]byte(m.Businesses), &businesses); err != nil {
			return turf.Territory{}, fmt.Errorf("decode businesses: %w", err)
		}
	}
	var contest *turf.Contest
	if m.UnderAttack {
		contest = &turf.Contest{}
		if err := json.Unmarshal([]byte(m.Contest), contest); err != nil {
			return turf.Territory{}, fmt.Errorf("decode contest: %w", err)
		}
	}
	lastAttack := m.LastAttackTime
	if lastAttack.Year() <= 1 {
		lastAttack = time.Time{}
	}
	return turf.Territory{
		ID:              m.PlotID,
		Owner:           m.Owner,
		District:        turf.District(m.District),
		PlotIndex:       uint16(m.PlotIndex),
		BaseIncome:      base,
		CurrentIncome:   current,
		SecurityLevel:   uint8(m.SecurityLevel),
		LastIncomeClaim: m.LastIncomeClaim.UTC(),
		LastAttackTime:  lastAttack,
		DefenseWins:     uint32(m.DefenseWins),
		AttackWins:      uint32(m.AttackWins),
		UnderAttack:     m.UnderAttack,
		Contest:         contest,
		Businesses:      businesses,
		Version:         m.Version,
	}, nil
}

func toDomainTerritories(rows []model.Territory) ([]turf.Territory, error) {
	out := make([]turf.Territory, 0, len(rows))
	for _, row := range rows {
		t, err := toDomainTerritory(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
