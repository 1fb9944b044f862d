package memory

import (
	"context"
	"sync"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

// Store keeps the whole ledger in process. TxManager holds the write lock for
// the length of a transaction; repositories called outside one take the lock
// themselves.
type Store struct {
	mu          sync.RWMutex
	config      *turf.Config
	plots       map[string]turf.Territory
	events      map[string][]turf.DomainEvent
	credentials map[string]ports.PlayerCredentialRecord
	balances    map[string]uint64
	custody     map[string]string
	slot        uint64
}

func NewStore() *Store {
	return &Store{
		plots:       make(map[string]turf.Territory),
		events:      make(map[string][]turf.DomainEvent),
		credentials: make(map[string]ports.PlayerCredentialRecord),
		balances:    make(map[string]uint64),
		custody:     make(map[string]string),
	}
}

type txKeyType struct{}

var txKey = txKeyType{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey).(bool)
	return v
}

func (s *Store) read(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn()
}

func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

type snapshot struct {
	config      *turf.Config
	plots       map[string]turf.Territory
	events      map[string][]turf.DomainEvent
	credentials map[string]ports.PlayerCredentialRecord
	balances    map[string]uint64
	custody     map[string]string
	slot        uint64
}

// snapshot must be called with mu held.
func (s *Store) snapshot() snapshot {
	snap := snapshot{
		plots:       make(map[string]turf.Territory, len(s.plots)),
		events:      make(map[string][]turf.DomainEvent, len(s.events)),
		credentials: make(map[string]ports.PlayerCredentialRecord, len(s.credentials)),
		balances:    make(map[string]uint64, len(s.balances)),
		custody:     make(map[string]string, len(s.custody)),
		slot:        s.slot,
	}
	if s.config != nil {
		c := *s.config
		snap.config = &c
	}
	for k, v := range s.plots {
		snap.plots[k] = v.Clone()
	}
	for k, v := range s.events {
		snap.events[k] = append([]turf.DomainEvent(nil), v...)
	}
	for k, v := range s.credentials {
		snap.credentials[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.custody {
		snap.custody[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.config = snap.config
	s.plots = snap.plots
	s.events = snap.events
	s.credentials = snap.credentials
	s.balances = snap.balances
	s.custody = snap.custody
	s.slot = snap.slot
}

// SeedBalance credits an account directly. Intended for tests and local runs.
func (s *Store) SeedBalance(account string, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] += amount
}
