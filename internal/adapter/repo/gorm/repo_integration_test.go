package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TURF_DB_DSN")
	if dsn == "" {
		t.Skip("TURF_DB_DSN is required for integration test")
	}
	return dsn
}

func TestPlotRepo_RoundTripContestAndBusinesses(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	plotID := "it-plot-roundtrip"
	_ = db.Exec("DELETE FROM territories WHERE plot_id = ? OR plot_index = ?", plotID, 2499).Error

	repo := NewPlotRepo(db)
	now := time.Unix(1700000000, 0).UTC()
	seed := turf.NewTerritory(plotID, "it-owner", turf.DistrictHarbor, 2499, 10_000, now)
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("create: %v", err)
	}
	next := seed.Clone()
	next.Businesses = append(next.Businesses, turf.Business{Type: turf.BusinessShipping, Investment: 10_000, IncomeBoost: 18, CreatedAt: now})
	next.CurrentIncome = 10_018
	next.UnderAttack = true
	next.Contest = &turf.Contest{AttackerPlotID: "it-attacker", AttackerOwner: "it-raider", PendingSuccess: true, StartedAt: now}
	next.Version = 2
	if err := repo.SaveWithVersion(ctx, next, 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveWithVersion(ctx, next, 1); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected stale save conflict, got %v", err)
	}

	got, err := repo.GetByID(ctx, plotID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentIncome != 10_018 || len(got.Businesses) != 1 {
		t.Fatalf("unexpected businesses round trip: %+v", got)
	}
	if got.Contest == nil || got.Contest.AttackerPlotID != "it-attacker" {
		t.Fatalf("expected contest round trip, got %+v", got.Contest)
	}

	contested, err := repo.ListContested(ctx, now.Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("list contested: %v", err)
	}
	found := false
	for _, p := range contested {
		found = found || p.ID == plotID
	}
	if !found {
		t.Fatalf("expected %s in contested list", plotID)
	}
}

func TestLedgerRepo_RollsBackWithTransaction(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	account := "it-ledger-account"
	_ = db.Exec("DELETE FROM ledger_balances WHERE account = ?", account).Error

	ledger := NewLedgerRepo(db)
	tx := NewTxManager(db)
	if err := ledger.Mint(ctx, 100, account); err != nil {
		t.Fatalf("mint: %v", err)
	}
	boom := errors.New("boom")
	err = tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := ledger.Burn(txCtx, 60, account); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	bal, err := ledger.BalanceOf(ctx, account)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 100 {
		t.Fatalf("expected rolled back balance 100, got %d", bal)
	}
	if err := ledger.Burn(ctx, 101, account); !errors.Is(err, ports.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestCustodyAndSlotCounter(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	_ = db.Exec("DELETE FROM asset_custody WHERE asset_id = ?", "it-asset").Error

	custody := NewCustodyRepo(db)
	if err := custody.MintOne(ctx, "it-asset", "alice"); err != nil {
		t.Fatalf("mint one: %v", err)
	}
	if err := custody.TransferOne(ctx, "it-asset", "bob", "carol"); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict for wrong holder, got %v", err)
	}
	if err := custody.TransferOne(ctx, "it-asset", "alice", "bob"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if holder, _ := custody.OwnerOf(ctx, "it-asset"); holder != "bob" {
		t.Fatalf("expected bob, got %s", holder)
	}

	counter := NewSlotCounter(db)
	a, err := counter.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	b, err := counter.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if b <= a {
		t.Fatalf("expected monotonic slots, got %d then %d", a, b)
	}
}
