package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"turfcontrol/internal/domain/turf"

	"github.com/stretchr/testify/require"
)

func TestLoadServer_MemoryStoreDefaults(t *testing.T) {
	t.Setenv("TURF_STORE", "memory")

	cfg, err := LoadServer("")
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 10*time.Minute, cfg.AttackWindow)
	require.Equal(t, "@every 1m", cfg.ResolverSpec)
}

func TestLoadServer_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("TURF_STORE", "postgres")
	t.Setenv("TURF_DB_DSN", "")

	_, err := LoadServer("")
	require.ErrorIs(t, err, ErrMissingDSN)
}

func TestLoadServer_ReadsDotenvWithoutOverridingEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TURF_HTTP_ADDR=:9999\nTURF_ATTACK_WINDOW=30s\n"), 0o600))
	t.Setenv("TURF_STORE", "memory")
	t.Setenv("TURF_ATTACK_WINDOW", "2m")
	// Register cleanup for the key godotenv sets.
	t.Setenv("TURF_HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("TURF_HTTP_ADDR"))

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, 2*time.Minute, cfg.AttackWindow)
}

func TestLoadServer_MissingDotenvIsIgnored(t *testing.T) {
	t.Setenv("TURF_STORE", "memory")
	_, err := LoadServer(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoadServer_UnknownStore(t *testing.T) {
	t.Setenv("TURF_STORE", "redis")
	_, err := LoadServer("")
	require.Error(t, err)
}

func TestLoadTuning_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("security_unit_cost: 1000\nbusiness_multiplier_tenths:\n  casino: 15\n"), 0o600))

	tune, err := LoadTuning(path)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), tune.SecurityUnitCost)
	require.Equal(t, uint64(turf.DefaultBusinessBoostScale), tune.BusinessBoostScale)
	require.Equal(t, uint64(15), tune.Multipliers[turf.BusinessCasino])
	require.Equal(t, uint64(18), tune.Multipliers[turf.BusinessShipping])
}

func TestLoadTuning_EmptyPathUsesDefaults(t *testing.T) {
	tune, err := LoadTuning("")
	require.NoError(t, err)
	require.Equal(t, turf.DefaultTuning(), tune)
}
