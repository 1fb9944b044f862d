package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"turfcontrol/internal/adapter/repo/gorm/model"
	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []turf.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.DomainEvent, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", e.Type, err)
		}
		rows = append(rows, model.DomainEvent{
			PlotID:     e.PlotID,
			Type:       e.Type,
			OccurredAt: e.OccurredAt.UTC(),
			Payload:    string(b),
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r EventRepo) ListByPlotID(ctx context.Context, plotID string, limit int) ([]turf.DomainEvent, error) {
	rows := []model.DomainEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where(&model.DomainEvent{PlotID: plotID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "occurred_at"}, Desc: true},
				{Column: clause.Column{Name: "id"}, Desc: true},
			},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]turf.DomainEvent, 0, len(rows))
	for _, row := range rows {
		payload, err := decodePayload(row.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode event %d payload: %w", row.ID, err)
		}
		out = append(out, turf.DomainEvent{
			Type:       row.Type,
			PlotID:     row.PlotID,
			OccurredAt: row.OccurredAt.UTC(),
			Payload:    payload,
		})
	}
	return out, nil
}

// decodePayload keeps numbers as json.Number so uint64 amounts survive.
func decodePayload(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
