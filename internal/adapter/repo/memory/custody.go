package memory

import (
	"context"

	"turfcontrol/internal/app/ports"
)

// Custody tracks the holder of each territory's ownership unit.
type Custody struct {
	store *Store
}

func NewCustody(store *Store) Custody {
	return Custody{store: store}
}

func (c Custody) MintOne(ctx context.Context, assetID, recipient string) error {
	return c.store.write(ctx, func() error {
		if _, exists := c.store.custody[assetID]; exists {
			return ports.ErrConflict
		}
		c.store.custody[assetID] = recipient
		return nil
	})
}

func (c Custody) TransferOne(ctx context.Context, assetID, from, to string) error {
	return c.store.write(ctx, func() error {
		holder, ok := c.store.custody[assetID]
		if !ok {
			return ports.ErrNotFound
		}
		if holder != from {
			return ports.ErrConflict
		}
		c.store.custody[assetID] = to
		return nil
	})
}

func (c Custody) OwnerOf(ctx context.Context, assetID string) (string, error) {
	var out string
	err := c.store.read(ctx, func() error {
		holder, ok := c.store.custody[assetID]
		if !ok {
			return ports.ErrNotFound
		}
		out = holder
		return nil
	})
	return out, err
}
