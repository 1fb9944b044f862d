package slot

import (
	"context"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

// Source derives the capture factor from the shared slot counter. It is
// predictable by anyone who can read the counter and is kept behind
// ports.RandomSource so a stronger source can replace it.
type Source struct {
	Counter ports.SlotCounter
}

func (s Source) Factor(ctx context.Context) (uint8, error) {
	n, err := s.Counter.Next(ctx)
	if err != nil {
		return 0, err
	}
	return uint8(n % turf.RandomFactorModulus), nil
}
