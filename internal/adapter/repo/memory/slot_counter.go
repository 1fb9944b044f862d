package memory

import "context"

type SlotCounter struct {
	store *Store
}

func NewSlotCounter(store *Store) SlotCounter {
	return SlotCounter{store: store}
}

func (c SlotCounter) Next(ctx context.Context) (uint64, error) {
	var out uint64
	err := c.store.write(ctx, func() error {
		c.store.slot++
		out = c.store.slot
		return nil
	})
	return out, err
}
