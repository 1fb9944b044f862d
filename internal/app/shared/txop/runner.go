package txop

import (
	"context"
	"errors"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"go.uber.org/zap"
)

// Runner wraps one ledger operation: the mutation and its events commit in a
// single transaction, then metrics are recorded and the events are published.
type Runner struct {
	TxManager ports.TxManager
	Events    ports.EventRepository
	Sink      ports.EventSink
	Metrics   ports.OperationMetrics
	Logger    *zap.Logger
}

func (r Runner) Run(ctx context.Context, op string, fn func(txCtx context.Context) ([]turf.DomainEvent, error)) ([]turf.DomainEvent, error) {
	log := r.logger()
	var committed []turf.DomainEvent
	err := r.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		events, err := fn(txCtx)
		if err != nil {
			return err
		}
		if r.Events != nil && len(events) > 0 {
			if err := r.Events.Append(txCtx, events); err != nil {
				return err
			}
		}
		committed = events
		return nil
	})
	if err != nil {
		if r.Metrics != nil {
			if errors.Is(err, ports.ErrConflict) {
				r.Metrics.RecordConflict(op)
			} else {
				r.Metrics.RecordFailure(op)
			}
		}
		log.Info("operation rejected", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	if r.Metrics != nil {
		r.Metrics.RecordSuccess(op)
	}
	for _, evt := range committed {
		log.Info("operation committed",
			zap.String("op", op),
			zap.String("event", evt.Type),
			zap.String("plot_id", evt.PlotID),
		)
	}
	if r.Sink != nil && len(committed) > 0 {
		// The transaction is already committed; a sink failure only delays indexing.
		if err := r.Sink.Publish(ctx, committed); err != nil {
			log.Warn("publish events", zap.String("op", op), zap.Error(err))
		}
	}
	return committed, nil
}

func (r Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
