package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"github.com/stretchr/testify/require"
)

func TestTxManager_RollsBackEveryWriteOnError(t *testing.T) {
	store := NewStore()
	store.SeedBalance("alice", 100)
	tx := NewTxManager(store)
	plots := NewPlotRepo(store)
	ledger := NewLedger(store)
	custody := NewCustody(store)
	now := time.Unix(1700000000, 0).UTC()

	boom := errors.New("boom")
	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, plots.Create(ctx, turf.NewTerritory("p1", "alice", turf.DistrictHarbor, 1, 10, now)))
		require.NoError(t, ledger.Burn(ctx, 40, "alice"))
		require.NoError(t, custody.MintOne(ctx, "p1", "alice"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = plots.GetByID(context.Background(), "p1")
	require.ErrorIs(t, err, ports.ErrNotFound)
	bal, err := ledger.BalanceOf(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(100), bal)
	_, err = custody.OwnerOf(context.Background(), "p1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPlotRepo_SaveWithVersionDetectsConflict(t *testing.T) {
	store := NewStore()
	plots := NewPlotRepo(store)
	ctx := context.Background()
	plot := turf.NewTerritory("p1", "alice", turf.DistrictDowntown, 7, 10, time.Unix(0, 0))
	require.NoError(t, plots.Create(ctx, plot))

	next := plot.Clone()
	next.SecurityLevel = 60
	next.Version = 2
	require.NoError(t, plots.SaveWithVersion(ctx, next, 1))
	require.ErrorIs(t, plots.SaveWithVersion(ctx, next, 1), ports.ErrConflict)

	dup := turf.NewTerritory("p2", "bob", turf.DistrictDowntown, 7, 10, time.Unix(0, 0))
	require.ErrorIs(t, plots.Create(ctx, dup), ports.ErrConflict)

	got, err := plots.GetByIndex(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, uint8(60), got.SecurityLevel)
}

func TestPlotRepo_RejectsBrokenTerritoryAndRollsBack(t *testing.T) {
	store := NewStore()
	store.SeedBalance("alice", 100)
	tx := NewTxManager(store)
	plots := NewPlotRepo(store)
	ledger := NewLedger(store)
	now := time.Unix(1700000000, 0).UTC()
	plot := turf.NewTerritory("p1", "alice", turf.DistrictHarbor, 1, 10, now)
	require.NoError(t, plots.Create(context.Background(), plot))

	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, ledger.Burn(ctx, 40, "alice"))
		broken := plot.Clone()
		broken.CurrentIncome = 999
		broken.Version = 2
		return plots.SaveWithVersion(ctx, broken, 1)
	})
	require.ErrorIs(t, err, turf.ErrInvariantViolation)

	got, err := plots.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, uint64(10), got.CurrentIncome)
	require.Equal(t, int64(1), got.Version)
	bal, err := ledger.BalanceOf(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(100), bal)

	orphan := turf.NewTerritory("p2", "bob", turf.DistrictHarbor, 2, 10, now)
	orphan.UnderAttack = true
	require.ErrorIs(t, plots.Create(context.Background(), orphan), turf.ErrInvariantViolation)
	_, err = plots.GetByID(context.Background(), "p2")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPlotRepo_ListContestedOrdersByStart(t *testing.T) {
	store := NewStore()
	plots := NewPlotRepo(store)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	for i, id := range []string{"a", "b", "c"} {
		p := turf.NewTerritory(id, "owner", turf.DistrictFinancial, uint16(i+1), 10, base)
		if id != "c" {
			p.UnderAttack = true
			p.Contest = &turf.Contest{AttackerPlotID: "x", StartedAt: base.Add(time.Duration(2-i) * time.Minute)}
		}
		require.NoError(t, plots.Create(ctx, p))
	}

	got, err := plots.ListContested(ctx, base.Add(5*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, "a", got[1].ID)

	got, err = plots.ListContested(ctx, base, 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLedger_BurnAndTransfer(t *testing.T) {
	store := NewStore()
	ledger := NewLedger(store)
	ctx := context.Background()

	require.NoError(t, ledger.Mint(ctx, 50, "alice"))
	require.ErrorIs(t, ledger.Burn(ctx, 51, "alice"), ports.ErrInsufficientFunds)
	require.NoError(t, ledger.Transfer(ctx, 20, "alice", "bob"))

	a, _ := ledger.BalanceOf(ctx, "alice")
	b, _ := ledger.BalanceOf(ctx, "bob")
	require.Equal(t, uint64(30), a)
	require.Equal(t, uint64(20), b)

	require.NoError(t, ledger.Mint(ctx, ^uint64(0)-20, "bob"))
	require.ErrorIs(t, ledger.Mint(ctx, 1, "bob"), turf.ErrValidation)
}

func TestCustody_TransferRequiresHolder(t *testing.T) {
	store := NewStore()
	custody := NewCustody(store)
	ctx := context.Background()

	require.NoError(t, custody.MintOne(ctx, "p1", "alice"))
	require.ErrorIs(t, custody.MintOne(ctx, "p1", "bob"), ports.ErrConflict)
	require.ErrorIs(t, custody.TransferOne(ctx, "p1", "bob", "carol"), ports.ErrConflict)
	require.NoError(t, custody.TransferOne(ctx, "p1", "alice", "bob"))

	holder, err := custody.OwnerOf(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "bob", holder)
}

func TestEventRepo_ListNewestFirst(t *testing.T) {
	store := NewStore()
	events := NewEventRepo(store)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	require.NoError(t, events.Append(ctx, []turf.DomainEvent{
		{Type: turf.EventTerritoryMinted, PlotID: "p1", OccurredAt: base},
		{Type: turf.EventIncomeClaimed, PlotID: "p1", OccurredAt: base.Add(time.Hour)},
		{Type: turf.EventConfigUpdated, OccurredAt: base},
	}))

	got, err := events.ListByPlotID(ctx, "p1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, turf.EventIncomeClaimed, got[0].Type)

	_, err = events.ListByPlotID(ctx, "missing", 0)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSlotCounter_Monotonic(t *testing.T) {
	counter := NewSlotCounter(NewStore())
	first, err := counter.Next(context.Background())
	require.NoError(t, err)
	second, err := counter.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}
