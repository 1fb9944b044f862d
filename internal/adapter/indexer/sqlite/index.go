package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"turfcontrol/internal/domain/turf"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// EventIndex is a local secondary index of committed ledger events. Writes
// go through a single writer goroutine; Publish never blocks the caller and
// drops events when the queue is full. The primary event store remains the
// source of truth.
type EventIndex struct {
	db  *sql.DB
	log *zap.Logger

	// mu orders Publish sends against Close closing ch.
	mu   sync.RWMutex
	ch   chan []turf.DomainEvent
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
	written atomic.Uint64
}

const defaultQueueSize = 4096

func Open(path string, log *zap.Logger) (*EventIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newIndex(db, log, defaultQueueSize), nil
}

func newIndex(db *sql.DB, log *zap.Logger, queue int) *EventIndex {
	if log == nil {
		log = zap.NewNop()
	}
	s := &EventIndex{db: db, log: log, ch: make(chan []turf.DomainEvent, queue)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plot_id TEXT NOT NULL,
			type TEXT NOT NULL,
			occurred_at INTEGER NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_plot ON events(plot_id, occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);`,
		`CREATE TABLE IF NOT EXISTS plot_owners (
			plot_id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_plot_owners_owner ON plot_owners(owner);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Publish enqueues events for indexing.
func (s *EventIndex) Publish(_ context.Context, events []turf.DomainEvent) error {
	if s == nil || len(events) == 0 {
		return nil
	}
	batch := make([]turf.DomainEvent, len(events))
	copy(batch, events)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- batch:
	default:
		s.dropped.Add(uint64(len(batch)))
	}
	return nil
}

// Close drains the queue and closes the database.
func (s *EventIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

type Stats struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
}

func (s *EventIndex) Stats() Stats {
	return Stats{Written: s.written.Load(), Dropped: s.dropped.Load()}
}

func (s *EventIndex) loop() {
	for batch := range s.ch {
		if err := s.write(batch); err != nil {
			s.dropped.Add(uint64(len(batch)))
			s.log.Warn("index events", zap.Int("count", len(batch)), zap.Error(err))
			continue
		}
		s.written.Add(uint64(len(batch)))
	}
}

func (s *EventIndex) write(batch []turf.DomainEvent) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range batch {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO events(plot_id,type,occurred_at,payload_json) VALUES(?,?,?,?)`,
			e.PlotID, e.Type, e.OccurredAt.Unix(), string(raw),
		); err != nil {
			return err
		}
		if owner, ok := ownerAfter(e); ok {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO plot_owners(plot_id,owner,updated_at) VALUES(?,?,?)`,
				e.PlotID, owner, e.OccurredAt.Unix(),
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// ownerAfter reports the plot owner implied by an ownership-changing event.
func ownerAfter(e turf.DomainEvent) (string, bool) {
	if turf.IsAttackerView(e) {
		return "", false
	}
	switch e.Type {
	case turf.EventTerritoryMinted:
		owner, ok := e.Payload["owner"].(string)
		return owner, ok && owner != ""
	case turf.EventAttackResolved:
		if ok, _ := e.Payload["successful"].(bool); !ok {
			return "", false
		}
		owner, ok := e.Payload["attacker"].(string)
		return owner, ok && owner != ""
	}
	return "", false
}

// TypeCounts returns the number of indexed events per event type.
func (s *EventIndex) TypeCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var (
			typ string
			n   int64
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

// PlotsByOwner lists plot ids whose last indexed owner is owner.
func (s *EventIndex) PlotsByOwner(ctx context.Context, owner string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT plot_id FROM plot_owners WHERE owner = ? ORDER BY plot_id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Snapshot is the ops view of the index.
type Snapshot struct {
	Stats
	ByType    map[string]int64 `json:"by_type"`
	Generated time.Time        `json:"generated_at"`
}

func (s *EventIndex) Snapshot(ctx context.Context) (Snapshot, error) {
	counts, err := s.TypeCounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Stats: s.Stats(), ByType: counts, Generated: time.Now().UTC()}, nil
}

// SnapshotAny adapts Snapshot for the ops HTTP surface.
func (s *EventIndex) SnapshotAny(ctx context.Context) (any, error) {
	return s.Snapshot(ctx)
}
