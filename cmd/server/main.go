package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	httpadapter "turfcontrol/internal/adapter/http"
	indexsqlite "turfcontrol/internal/adapter/indexer/sqlite"
	"turfcontrol/internal/adapter/metrics"
	metricsinmem "turfcontrol/internal/adapter/metrics/inmemory"
	metricsprom "turfcontrol/internal/adapter/metrics/prom"
	"turfcontrol/internal/adapter/random/slot"
	gormrepo "turfcontrol/internal/adapter/repo/gorm"
	"turfcontrol/internal/adapter/repo/memory"
	"turfcontrol/internal/app/accrual"
	"turfcontrol/internal/app/auth"
	"turfcontrol/internal/app/capture"
	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/app/registry"
	"turfcontrol/internal/app/replay"
	"turfcontrol/internal/app/shared/txop"
	"turfcontrol/internal/app/status"
	"turfcontrol/internal/app/upgrade"
	"turfcontrol/internal/domain/turf"
	"turfcontrol/internal/platform/config"
	"turfcontrol/internal/platform/logging"
	"turfcontrol/internal/worker/resolver"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadServer(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	a, err := buildApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("build app", zap.Error(err))
	}
	defer a.close()

	a.worker.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.worker.Stop(ctx)
	}()

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	a.handler.RegisterRoutes(s)

	log.Info("turfcontrol server listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.Store),
		zap.String("resolver_spec", cfg.ResolverSpec),
	)
	s.Spin()
}

type stores struct {
	tx      ports.TxManager
	config  ports.ConfigRepository
	plots   ports.PlotRepository
	events  ports.EventRepository
	ledger  ports.CurrencyLedger
	custody ports.AssetCustody
	slots   ports.SlotCounter
	creds   ports.PlayerCredentialRepository
}

type application struct {
	handler httpadapter.Handler
	worker  *resolver.Worker
	capture capture.UseCase
	index   *indexsqlite.EventIndex
}

func (a application) close() {
	if a.index != nil {
		_ = a.index.Close()
	}
}

func buildApp(ctx context.Context, cfg config.Server, log *zap.Logger) (application, error) {
	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return application{}, err
	}
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return application{}, err
	}
	rules := turf.NewRules(tuning)

	kpi := metricsinmem.NewRecorder()
	prom := metricsprom.NewRecorder()
	runner := txop.Runner{
		TxManager: st.tx,
		Events:    st.events,
		Metrics:   metrics.Fanout{kpi, prom},
		Logger:    log.Named("ledger"),
	}

	var index *indexsqlite.EventIndex
	if cfg.IndexPath != "" {
		index, err = indexsqlite.Open(cfg.IndexPath, log.Named("index"))
		if err != nil {
			return application{}, fmt.Errorf("open event index: %w", err)
		}
		runner.Sink = index
	}

	now := time.Now
	registryUC := registry.UseCase{Runner: runner, Config: st.config, Plots: st.plots, Custody: st.custody, Rules: rules, Now: now}
	captureUC := capture.UseCase{
		Runner:       runner,
		Config:       st.config,
		Plots:        st.plots,
		Custody:      st.custody,
		Random:       slot.Source{Counter: st.slots},
		Rules:        rules,
		Logger:       log.Named("capture"),
		Now:          now,
		AttackWindow: cfg.AttackWindow,
	}

	if cfg.Authority != "" && cfg.Treasury != "" {
		_, err := registryUC.Initialize(ctx, registry.InitializeRequest{Authority: cfg.Authority, Treasury: cfg.Treasury})
		if err != nil && !errors.Is(err, turf.ErrAlreadyInitialized) {
			return application{}, fmt.Errorf("initialize registry: %w", err)
		}
	}

	worker, err := resolver.New(cfg.ResolverSpec, captureUC, log.Named("resolver"))
	if err != nil {
		return application{}, err
	}

	h := httpadapter.Handler{
		RegisterUC: auth.RegisterUseCase{Credentials: st.creds, TxManager: st.tx, Now: now},
		AuthUC:     auth.VerifyUseCase{Credentials: st.creds},
		RegistryUC: registryUC,
		AccrualUC:  accrual.UseCase{Runner: runner, Config: st.config, Plots: st.plots, Ledger: st.ledger, Rules: rules, Now: now},
		UpgradeUC:  upgrade.UseCase{Runner: runner, Plots: st.plots, Ledger: st.ledger, Rules: rules, Now: now},
		CaptureUC:  captureUC,
		StatusUC:   status.UseCase{Plots: st.plots, Ledger: st.ledger, Custody: st.custody},
		ReplayUC:   replay.UseCase{Events: st.events},
		KPI:        kpi,
		Metrics:    prom.Handler(),

		OpenInitialize: cfg.Store == config.StoreMemory,
	}
	if index != nil {
		h.Index = index
	}
	return application{handler: h, worker: worker, capture: captureUC, index: index}, nil
}

func buildStores(ctx context.Context, cfg config.Server, log *zap.Logger) (stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; state is lost on restart")
		s := memory.NewStore()
		return stores{
			tx:      memory.NewTxManager(s),
			config:  memory.NewConfigRepo(s),
			plots:   memory.NewPlotRepo(s),
			events:  memory.NewEventRepo(s),
			ledger:  memory.NewLedger(s),
			custody: memory.NewCustody(s),
			slots:   memory.NewSlotCounter(s),
			creds:   memory.NewPlayerCredentialRepo(s),
		}, nil
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		return stores{}, fmt.Errorf("open postgres: %w", err)
	}
	if _, err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir, log.Named("migrate")); err != nil {
		return stores{}, fmt.Errorf("apply migrations: %w", err)
	}
	return stores{
		tx:      gormrepo.NewTxManager(db),
		config:  gormrepo.NewConfigRepo(db),
		plots:   gormrepo.NewPlotRepo(db),
		events:  gormrepo.NewEventRepo(db),
		ledger:  gormrepo.NewLedgerRepo(db),
		custody: gormrepo.NewCustodyRepo(db),
		slots:   gormrepo.NewSlotCounter(db),
		creds:   gormrepo.NewPlayerCredentialRepo(db),
	}, nil
}
