package memory

import (
	"context"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

type ConfigRepo struct {
	store *Store
}

func NewConfigRepo(store *Store) ConfigRepo {
	return ConfigRepo{store: store}
}

func (r ConfigRepo) Get(ctx context.Context) (turf.Config, error) {
	var out turf.Config
	err := r.store.read(ctx, func() error {
		if r.store.config == nil {
			return ports.ErrNotFound
		}
		out = *r.store.config
		return nil
	})
	return out, err
}

func (r ConfigRepo) GetForUpdate(ctx context.Context) (turf.Config, error) {
	return r.Get(ctx)
}

func (r ConfigRepo) Create(ctx context.Context, cfg turf.Config) error {
	return r.store.write(ctx, func() error {
		if r.store.config != nil {
			return ports.ErrConflict
		}
		c := cfg
		r.store.config = &c
		return nil
	})
}

func (r ConfigRepo) SaveWithVersion(ctx context.Context, cfg turf.Config, expectedVersion int64) error {
	return r.store.write(ctx, func() error {
		if r.store.config == nil || r.store.config.Version != expectedVersion {
			return ports.ErrConflict
		}
		c := cfg
		r.store.config = &c
		return nil
	})
}
