package ports

import (
	"context"

	"turfcontrol/internal/domain/turf"
)

// EventSink receives events after their transaction committed.
type EventSink interface {
	Publish(ctx context.Context, events []turf.DomainEvent) error
}
