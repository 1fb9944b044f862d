package capture

import (
	"context"
	"errors"
	"strings"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/app/shared/txop"
	"turfcontrol/internal/domain/turf"

	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid capture request")

const (
	OpAttack  = "attack_territory"
	OpResolve = "resolve_attack"

	DefaultAttackWindow = 10 * time.Minute
	defaultResolveBatch = 100
)

type AttackRequest struct {
	AttackerPlotID string
	DefenderPlotID string
	Caller         string
}

type AttackResponse struct {
	Defender turf.Territory     `json:"defender"`
	Outcome  turf.AttackOutcome `json:"outcome"`
}

type ResolveRequest struct {
	DefenderPlotID string
	AttackerPlotID string
	Success        bool
}

type ResolveResponse struct {
	Attacker      turf.Territory `json:"attacker"`
	Defender      turf.Territory `json:"defender"`
	PreviousOwner string         `json:"previous_owner"`
	Successful    bool           `json:"successful"`
}

type PendingResult struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

type UseCase struct {
	Runner  txop.Runner
	Config  ports.ConfigRepository
	Plots   ports.PlotRepository
	Custody ports.AssetCustody
	Random  ports.RandomSource
	Rules   turf.Rules
	Logger  *zap.Logger
	Now     func() time.Time
	// AttackWindow is how long a contest stays pending before ResolvePending
	// settles it with the recorded outcome.
	AttackWindow time.Duration
}

func (u UseCase) Attack(ctx context.Context, req AttackRequest) (AttackResponse, error) {
	req.AttackerPlotID = strings.TrimSpace(req.AttackerPlotID)
	req.DefenderPlotID = strings.TrimSpace(req.DefenderPlotID)
	req.Caller = strings.TrimSpace(req.Caller)
	if req.AttackerPlotID == "" || req.DefenderPlotID == "" || req.Caller == "" {
		return AttackResponse{}, ErrInvalidRequest
	}
	if req.AttackerPlotID == req.DefenderPlotID {
		return AttackResponse{}, turf.ErrCannotAttackSelf
	}
	now := u.now()

	var out AttackResponse
	_, err := u.Runner.Run(ctx, OpAttack, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		cfg, err := u.Config.Get(txCtx)
		if err != nil {
			return nil, err
		}
		attacker, defender, err := u.lockPair(txCtx, req.AttackerPlotID, req.DefenderPlotID)
		if err != nil {
			return nil, err
		}
		factor, err := u.Random.Factor(txCtx)
		if err != nil {
			return nil, err
		}
		next, outcome, evt, err := u.Rules.Attack(cfg, attacker, defender, req.Caller, factor, now)
		if err != nil {
			return nil, err
		}
		if err := u.Plots.SaveWithVersion(txCtx, next, defender.Version); err != nil {
			return nil, err
		}
		out = AttackResponse{Defender: next, Outcome: outcome}
		return []turf.DomainEvent{evt, turf.AttackerView(evt)}, nil
	})
	if err != nil {
		return AttackResponse{}, err
	}
	return out, nil
}

func (u UseCase) Resolve(ctx context.Context, req ResolveRequest) (ResolveResponse, error) {
	req.AttackerPlotID = strings.TrimSpace(req.AttackerPlotID)
	req.DefenderPlotID = strings.TrimSpace(req.DefenderPlotID)
	if req.AttackerPlotID == "" || req.DefenderPlotID == "" {
		return ResolveResponse{}, ErrInvalidRequest
	}
	if req.AttackerPlotID == req.DefenderPlotID {
		return ResolveResponse{}, turf.ErrAttackerMismatch
	}
	now := u.now()

	var out ResolveResponse
	_, err := u.Runner.Run(ctx, OpResolve, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		attacker, defender, err := u.lockPair(txCtx, req.AttackerPlotID, req.DefenderPlotID)
		if err != nil {
			return nil, err
		}
		res, err := u.Rules.Resolve(attacker, defender, req.Success, now)
		if err != nil {
			return nil, err
		}
		if res.Successful {
			if err := u.Custody.TransferOne(txCtx, defender.ID, res.PreviousOwner, res.Defender.Owner); err != nil {
				return nil, err
			}
		}
		if err := u.Plots.SaveWithVersion(txCtx, res.Defender, defender.Version); err != nil {
			return nil, err
		}
		if err := u.Plots.SaveWithVersion(txCtx, res.Attacker, attacker.Version); err != nil {
			return nil, err
		}
		out = ResolveResponse{
			Attacker:      res.Attacker,
			Defender:      res.Defender,
			PreviousOwner: res.PreviousOwner,
			Successful:    res.Successful,
		}
		return []turf.DomainEvent{res.Event, turf.AttackerView(res.Event)}, nil
	})
	if err != nil {
		return ResolveResponse{}, err
	}
	return out, nil
}

// ResolvePending settles every contest older than the attack window with the
// outcome recorded at attack time. Each contest resolves in its own
// transaction; one failure does not stop the batch.
func (u UseCase) ResolvePending(ctx context.Context) (PendingResult, error) {
	window := u.AttackWindow
	if window <= 0 {
		window = DefaultAttackWindow
	}
	cutoff := u.now().Add(-window)
	contested, err := u.Plots.ListContested(ctx, cutoff, defaultResolveBatch)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return PendingResult{}, nil
		}
		return PendingResult{}, err
	}

	var res PendingResult
	for _, plot := range contested {
		if plot.Contest == nil {
			continue
		}
		_, err := u.Resolve(ctx, ResolveRequest{
			DefenderPlotID: plot.ID,
			AttackerPlotID: plot.Contest.AttackerPlotID,
			Success:        plot.Contest.PendingSuccess,
		})
		if err != nil {
			res.Failed++
			u.logger().Warn("resolve pending contest",
				zap.String("plot_id", plot.ID),
				zap.String("attacker_plot_id", plot.Contest.AttackerPlotID),
				zap.Error(err),
			)
			continue
		}
		res.Resolved++
	}
	return res, nil
}

// lockPair loads both plots for update in id order so two operations on the
// same pair always lock in the same sequence.
func (u UseCase) lockPair(ctx context.Context, attackerID, defenderID string) (turf.Territory, turf.Territory, error) {
	firstID, secondID := attackerID, defenderID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := u.Plots.GetForUpdate(ctx, firstID)
	if err != nil {
		return turf.Territory{}, turf.Territory{}, err
	}
	second, err := u.Plots.GetForUpdate(ctx, secondID)
	if err != nil {
		return turf.Territory{}, turf.Territory{}, err
	}
	if first.ID == attackerID {
		return first, second, nil
	}
	return second, first, nil
}

func (u UseCase) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
