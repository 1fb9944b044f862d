package memory

import (
	"context"
	"sort"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

type PlotRepo struct {
	store *Store
}

func NewPlotRepo(store *Store) PlotRepo {
	return PlotRepo{store: store}
}

func (r PlotRepo) GetByID(ctx context.Context, plotID string) (turf.Territory, error) {
	var out turf.Territory
	err := r.store.read(ctx, func() error {
		t, ok := r.store.plots[plotID]
		if !ok {
			return ports.ErrNotFound
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

func (r PlotRepo) GetForUpdate(ctx context.Context, plotID string) (turf.Territory, error) {
	return r.GetByID(ctx, plotID)
}

func (r PlotRepo) GetByIndex(ctx context.Context, plotIndex uint16) (turf.Territory, error) {
	var out turf.Territory
	err := r.store.read(ctx, func() error {
		for _, t := range r.store.plots {
			if t.PlotIndex == plotIndex {
				out = t.Clone()
				return nil
			}
		}
		return ports.ErrNotFound
	})
	return out, err
}

func (r PlotRepo) ListByOwner(ctx context.Context, owner string) ([]turf.Territory, error) {
	out := []turf.Territory{}
	err := r.store.read(ctx, func() error {
		for _, t := range r.store.plots {
			if t.Owner == owner {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PlotIndex < out[j].PlotIndex })
	return out, err
}

func (r PlotRepo) ListContested(ctx context.Context, startedBefore time.Time, limit int) ([]turf.Territory, error) {
	out := []turf.Territory{}
	err := r.store.read(ctx, func() error {
		for _, t := range r.store.plots {
			if t.Contest == nil || t.Contest.StartedAt.After(startedBefore) {
				continue
			}
			out = append(out, t.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Contest.StartedAt.Before(out[j].Contest.StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r PlotRepo) Create(ctx context.Context, t turf.Territory) error {
	if err := t.CheckInvariants(); err != nil {
		return err
	}
	return r.store.write(ctx, func() error {
		if _, exists := r.store.plots[t.ID]; exists {
			return ports.ErrConflict
		}
		for _, other := range r.store.plots {
			if other.PlotIndex == t.PlotIndex {
				return ports.ErrConflict
			}
		}
		r.store.plots[t.ID] = t.Clone()
		return nil
	})
}

func (r PlotRepo) SaveWithVersion(ctx context.Context, t turf.Territory, expectedVersion int64) error {
	if err := t.CheckInvariants(); err != nil {
		return err
	}
	return r.store.write(ctx, func() error {
		current, ok := r.store.plots[t.ID]
		if !ok || current.Version != expectedVersion {
			return ports.ErrConflict
		}
		r.store.plots[t.ID] = t.Clone()
		return nil
	})
}
