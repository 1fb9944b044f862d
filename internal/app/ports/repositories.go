package ports

import (
	"context"
	"time"

	"turfcontrol/internal/domain/turf"
)

type ConfigRepository interface {
	Get(ctx context.Context) (turf.Config, error)
	// GetForUpdate locks the registry row until the transaction ends.
	GetForUpdate(ctx context.Context) (turf.Config, error)
	Create(ctx context.Context, cfg turf.Config) error
	SaveWithVersion(ctx context.Context, cfg turf.Config, expectedVersion int64) error
}

type PlotRepository interface {
	GetByID(ctx context.Context, plotID string) (turf.Territory, error)
	GetForUpdate(ctx context.Context, plotID string) (turf.Territory, error)
	GetByIndex(ctx context.Context, plotIndex uint16) (turf.Territory, error)
	ListByOwner(ctx context.Context, owner string) ([]turf.Territory, error)
	ListContested(ctx context.Context, startedBefore time.Time, limit int) ([]turf.Territory, error)
	Create(ctx context.Context, t turf.Territory) error
	SaveWithVersion(ctx context.Context, t turf.Territory, expectedVersion int64) error
}

type EventRepository interface {
	Append(ctx context.Context, events []turf.DomainEvent) error
	ListByPlotID(ctx context.Context, plotID string, limit int) ([]turf.DomainEvent, error)
}

type PlayerCredentialRecord struct {
	PlayerID  string
	KeySalt   []byte
	KeyHash   []byte
	Status    string
	CreatedAt time.Time
}

type PlayerCredentialRepository interface {
	Create(ctx context.Context, credential PlayerCredentialRecord) error
	GetByPlayerID(ctx context.Context, playerID string) (PlayerCredentialRecord, error)
}
