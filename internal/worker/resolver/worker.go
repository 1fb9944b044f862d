package resolver

import (
	"context"
	"fmt"
	"time"

	"turfcontrol/internal/app/capture"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingResolver settles contests whose attack window has passed.
type PendingResolver interface {
	ResolvePending(ctx context.Context) (capture.PendingResult, error)
}

// Worker runs the resolver on a cron schedule. Overlapping runs are skipped.
type Worker struct {
	cron     *cron.Cron
	resolver PendingResolver
	log      *zap.Logger
	timeout  time.Duration
}

const defaultRunTimeout = 30 * time.Second

func New(spec string, resolver PendingResolver, log *zap.Logger) (*Worker, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver worker: nil resolver")
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Worker{resolver: resolver, log: log, timeout: defaultRunTimeout}
	w.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))
	if _, err := w.cron.AddFunc(spec, w.RunOnce); err != nil {
		return nil, fmt.Errorf("resolver worker: schedule %q: %w", spec, err)
	}
	return w, nil
}

func (w *Worker) Start() {
	w.cron.Start()
}

// Stop stops scheduling and waits for a running pass, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (w *Worker) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	res, err := w.resolver.ResolvePending(ctx)
	if err != nil {
		w.log.Error("resolve pending contests", zap.Error(err))
		return
	}
	if res.Resolved > 0 || res.Failed > 0 {
		w.log.Info("resolved pending contests",
			zap.Int("resolved", res.Resolved),
			zap.Int("failed", res.Failed),
		)
	}
}

type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().With(zap.Error(err)).Errorw(msg, keysAndValues...)
}
