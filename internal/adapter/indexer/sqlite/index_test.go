package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"turfcontrol/internal/domain/turf"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEventIndex_IndexesEventsAndOwners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(path, nil)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	plot := turf.NewTerritory("p1", "alice", turf.DistrictDowntown, 1, 100, now)
	attacker := turf.NewTerritory("p2", "bob", turf.DistrictHarbor, 2, 100, now)
	ctx := context.Background()
	require.NoError(t, idx.Publish(ctx, []turf.DomainEvent{
		turf.TerritoryMinted(plot, now),
		turf.TerritoryMinted(attacker, now),
	}))
	resolved := turf.AttackResolved(attacker, "alice", plot, true, now.Add(time.Hour))
	require.NoError(t, idx.Publish(ctx, []turf.DomainEvent{resolved, turf.AttackerView(resolved)}))

	// Close drains the writer so the reads below see every batch.
	require.NoError(t, idx.Close())
	require.Equal(t, uint64(4), idx.Stats().Written)

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.TypeCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[turf.EventTerritoryMinted])
	require.Equal(t, int64(2), counts[turf.EventAttackResolved])

	bobs, err := reopened.PlotsByOwner(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2"}, bobs)
	alices, err := reopened.PlotsByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, alices)
}

func TestEventIndex_PublishAfterCloseIsNoop(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"), nil)
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Publish(context.Background(), []turf.DomainEvent{{Type: turf.EventIncomeClaimed, PlotID: "p1"}}))
	require.Zero(t, idx.Stats().Written)
}

func TestEventIndex_PublishRacingCloseNeverPanics(t *testing.T) {
	for round := 0; round < 20; round++ {
		idx, err := Open(filepath.Join(t.TempDir(), "index.db"), nil)
		require.NoError(t, err)

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < 50; j++ {
					_ = idx.Publish(context.Background(), []turf.DomainEvent{{Type: turf.EventIncomeClaimed, PlotID: "p1", Payload: map[string]any{}}})
				}
			}()
		}
		close(start)
		require.NoError(t, idx.Close())
		wg.Wait()

		st := idx.Stats()
		require.LessOrEqual(t, st.Written+st.Dropped, uint64(8*50))
	}
}

func TestEventIndex_SnapshotReportsCountsAndStats(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"), nil)
	require.NoError(t, err)
	now := time.Unix(1700000000, 0).UTC()
	plot := turf.NewTerritory("p1", "alice", turf.DistrictDowntown, 1, 100, now)
	require.NoError(t, idx.Publish(context.Background(), []turf.DomainEvent{turf.TerritoryMinted(plot, now)}))

	// Wait for the writer without closing so the snapshot can still query.
	require.Eventually(t, func() bool { return idx.Stats().Written == 1 }, 5*time.Second, 10*time.Millisecond)

	got, err := idx.SnapshotAny(context.Background())
	require.NoError(t, err)
	snap, ok := got.(Snapshot)
	require.True(t, ok)
	require.Equal(t, uint64(1), snap.Written)
	require.Equal(t, int64(1), snap.ByType[turf.EventTerritoryMinted])
	require.False(t, snap.Generated.IsZero())
	require.NoError(t, idx.Close())
}

func TestEventIndex_FailedBatchCountsAsDropped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectBegin().WillReturnError(errors.New("disk full"))
	mock.ExpectClose()

	idx := newIndex(db, nil, 1)
	require.NoError(t, idx.Publish(context.Background(), []turf.DomainEvent{{Type: turf.EventIncomeClaimed, PlotID: "p1", Payload: map[string]any{}}}))
	require.NoError(t, idx.Close())
	require.Equal(t, uint64(1), idx.Stats().Dropped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventIndex_TypeCountsPropagatesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT type, COUNT\(\*\) FROM events`).WillReturnError(errors.New("locked"))
	mock.ExpectClose()

	idx := newIndex(db, nil, 1)
	_, err = idx.TypeCounts(context.Background())
	require.Error(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerAfter_IgnoresAttackerView(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	attacker := turf.NewTerritory("p2", "bob", turf.DistrictHarbor, 2, 100, now)
	defender := turf.NewTerritory("p1", "alice", turf.DistrictDowntown, 1, 100, now)
	resolved := turf.AttackResolved(attacker, "alice", defender, true, now)

	owner, ok := ownerAfter(resolved)
	require.True(t, ok)
	require.Equal(t, "bob", owner)

	_, ok = ownerAfter(turf.AttackerView(resolved))
	require.False(t, ok)
}
