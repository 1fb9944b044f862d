package memory

import (
	"context"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(ctx context.Context, events []turf.DomainEvent) error {
	return r.store.write(ctx, func() error {
		for _, e := range events {
			key := e.PlotID
			if key == "" {
				key = "global"
			}
			r.store.events[key] = append(r.store.events[key], e)
		}
		return nil
	})
}

// ListByPlotID returns the newest events first.
func (r EventRepo) ListByPlotID(ctx context.Context, plotID string, limit int) ([]turf.DomainEvent, error) {
	var out []turf.DomainEvent
	err := r.store.read(ctx, func() error {
		all := r.store.events[plotID]
		if len(all) == 0 {
			return ports.ErrNotFound
		}
		out = make([]turf.DomainEvent, 0, len(all))
		for i := len(all) - 1; i >= 0; i-- {
			out = append(out, all[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
