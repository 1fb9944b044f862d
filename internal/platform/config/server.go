package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"turfcontrol/internal/domain/turf"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Server struct {
	HTTPAddr      string        `env:"TURF_HTTP_ADDR" envDefault:":8080"`
	Store         string        `env:"TURF_STORE" envDefault:"postgres"`
	DBDSN         string        `env:"TURF_DB_DSN"`
	MigrationsDir string        `env:"TURF_MIGRATIONS_DIR" envDefault:"db/migrations"`
	IndexPath     string        `env:"TURF_INDEX_PATH"`
	TuningFile    string        `env:"TURF_TUNING_FILE"`
	LogLevel      string        `env:"TURF_LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"TURF_LOG_FORMAT" envDefault:"json"`
	Authority     string        `env:"TURF_AUTHORITY"`
	Treasury      string        `env:"TURF_TREASURY"`
	ResolverSpec  string        `env:"TURF_RESOLVER_SPEC" envDefault:"@every 1m"`
	AttackWindow  time.Duration `env:"TURF_ATTACK_WINDOW" envDefault:"10m"`
}

var ErrMissingDSN = errors.New("TURF_DB_DSN is required when TURF_STORE=postgres")

// LoadServer reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadServer(dotenvPath string) (Server, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Server{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StorePostgres:
		if strings.TrimSpace(cfg.DBDSN) == "" {
			return Server{}, ErrMissingDSN
		}
	case StoreMemory:
	default:
		return Server{}, fmt.Errorf("unknown TURF_STORE %q", cfg.Store)
	}
	if cfg.AttackWindow < 0 {
		return Server{}, fmt.Errorf("TURF_ATTACK_WINDOW must not be negative")
	}
	return cfg, nil
}

// LoadTuning reads the economics tuning file. An empty path yields the
// defaults; missing keys keep their default values.
func LoadTuning(path string) (turf.Tuning, error) {
	if strings.TrimSpace(path) == "" {
		return turf.DefaultTuning(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return turf.Tuning{}, fmt.Errorf("read tuning: %w", err)
	}
	t := turf.DefaultTuning()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return turf.Tuning{}, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	return t.Normalized(), nil
}
