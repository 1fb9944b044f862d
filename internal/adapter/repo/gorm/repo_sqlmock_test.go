package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestConfigRepo_SaveWithVersionConflictWhenNoRowMatches(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "turf_configs" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	cfg := turf.DefaultConfig("authority", "treasury")
	cfg.Version = 2
	err := NewConfigRepo(db).SaveWithVersion(context.Background(), cfg, 1)
	require.ErrorIs(t, err, ports.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlotRepo_SaveWithVersionUpdatesMatchingRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "territories" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plot := turf.NewTerritory("p1", "alice", turf.DistrictHarbor, 3, 100, time.Unix(1700000000, 0))
	plot.Version = 2
	require.NoError(t, NewPlotRepo(db).SaveWithVersion(context.Background(), plot, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlotRepo_RejectsBrokenTerritoryBeforeSQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlotRepo(db)
	plot := turf.NewTerritory("p1", "alice", turf.DistrictHarbor, 3, 100, time.Unix(1700000000, 0))

	broken := plot.Clone()
	broken.SecurityLevel = turf.MaxSecurityLevel + 1
	require.ErrorIs(t, repo.Create(context.Background(), broken), turf.ErrInvariantViolation)

	broken = plot.Clone()
	broken.UnderAttack = true
	broken.Version = 2
	require.ErrorIs(t, repo.SaveWithVersion(context.Background(), broken, 1), turf.ErrInvariantViolation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlotRepo_GetByIDMapsMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "territories"`).WillReturnRows(sqlmock.NewRows([]string{"plot_id"}))

	_, err := NewPlotRepo(db).GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListByPlotIDDecodesLargeNumbers(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery(`SELECT \* FROM "domain_events"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "plot_id", "type", "occurred_at", "payload"}).
			AddRow(1, "p1", turf.EventTerritoryMinted, now, `{"owner":"alice","base_income":18446744073709551610}`),
	)

	events, err := NewEventRepo(db).ListByPlotID(context.Background(), "p1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, json.Number("18446744073709551610"), events[0].Payload["base_income"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListByPlotIDRejectsCorruptPayload(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "domain_events"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "plot_id", "type", "occurred_at", "payload"}).
			AddRow(7, "p1", turf.EventIncomeClaimed, time.Unix(1700000000, 0).UTC(), `{"gross":`),
	)

	_, err := NewEventRepo(db).ListByPlotID(context.Background(), "p1", 0)
	require.ErrorContains(t, err, "decode event 7 payload")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_MapsSerializationFailureToConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewTxManager(db).RunInTx(context.Background(), func(context.Context) error {
		return errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")
	})
	require.ErrorIs(t, err, ports.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTerritoryModelRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	plot := turf.NewTerritory("p1", "alice", turf.DistrictFinancial, 9, ^uint64(0)-5, now)
	plot.UnderAttack = true
	plot.Contest = &turf.Contest{AttackerPlotID: "p2", AttackerOwner: "bob", PendingSuccess: true, RandomFactor: 42, StartedAt: now}
	plot.Businesses = []turf.Business{{Type: turf.BusinessCasino, Investment: 10, IncomeBoost: 0, CreatedAt: now}}

	m, err := toModelTerritory(plot)
	require.NoError(t, err)
	require.Equal(t, now, m.ContestStarted)
	got, err := toDomainTerritory(m)
	require.NoError(t, err)
	require.Equal(t, plot.BaseIncome, got.BaseIncome)
	require.NotNil(t, got.Contest)
	require.Equal(t, "p2", got.Contest.AttackerPlotID)
	require.True(t, got.Contest.PendingSuccess)
	require.Len(t, got.Businesses, 1)
	require.True(t, got.LastAttackTime.IsZero())
}

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.sql"), 0o755))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"0001_a.sql", "0002_b.sql"}, files)
}
