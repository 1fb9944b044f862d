package memory

import (
	"context"

	"turfcontrol/internal/app/ports"
)

type PlayerCredentialRepo struct {
	store *Store
}

func NewPlayerCredentialRepo(store *Store) PlayerCredentialRepo {
	return PlayerCredentialRepo{store: store}
}

func (r PlayerCredentialRepo) Create(ctx context.Context, credential ports.PlayerCredentialRecord) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.credentials[credential.PlayerID]; exists {
			return ports.ErrConflict
		}
		r.store.credentials[credential.PlayerID] = credential
		return nil
	})
}

func (r PlayerCredentialRepo) GetByPlayerID(ctx context.Context, playerID string) (ports.PlayerCredentialRecord, error) {
	var out ports.PlayerCredentialRecord
	err := r.store.read(ctx, func() error {
		rec, ok := r.store.credentials[playerID]
		if !ok {
			return ports.ErrNotFound
		}
		out = rec
		return nil
	})
	return out, err
}
