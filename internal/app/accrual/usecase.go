package accrual

import (
	"context"
	"errors"
	"strings"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/app/shared/txop"
	"turfcontrol/internal/domain/turf"
)

var ErrInvalidRequest = errors.New("invalid accrual request")

const OpClaimIncome = "claim_income"

type ClaimRequest struct {
	PlotID string
	Caller string
}

type ClaimResponse struct {
	Territory turf.Territory       `json:"territory"`
	Income    turf.IncomeBreakdown `json:"income"`
}

type PreviewResponse struct {
	Income      turf.IncomeBreakdown `json:"income"`
	Claimable   bool                 `json:"claimable"`
	NextClaimAt time.Time            `json:"next_claim_at"`
}

type UseCase struct {
	Runner txop.Runner
	Config ports.ConfigRepository
	Plots  ports.PlotRepository
	Ledger ports.CurrencyLedger
	Rules  turf.Rules
	Now    func() time.Time
}

func (u UseCase) ClaimIncome(ctx context.Context, req ClaimRequest) (ClaimResponse, error) {
	req.PlotID = strings.TrimSpace(req.PlotID)
	req.Caller = strings.TrimSpace(req.Caller)
	if req.PlotID == "" || req.Caller == "" {
		return ClaimResponse{}, ErrInvalidRequest
	}
	now := u.now()

	var out ClaimResponse
	_, err := u.Runner.Run(ctx, OpClaimIncome, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		cfg, err := u.Config.Get(txCtx)
		if err != nil {
			return nil, err
		}
		plot, err := u.Plots.GetForUpdate(txCtx, req.PlotID)
		if err != nil {
			return nil, err
		}
		next, income, evt, err := u.Rules.ClaimIncome(cfg, plot, req.Caller, now)
		if err != nil {
			return nil, err
		}
		if err := u.Ledger.Mint(txCtx, income.Net, next.Owner); err != nil {
			return nil, err
		}
		if err := u.Ledger.Mint(txCtx, income.Tax, cfg.TreasuryAccount); err != nil {
			return nil, err
		}
		if err := u.Plots.SaveWithVersion(txCtx, next, plot.Version); err != nil {
			return nil, err
		}
		out = ClaimResponse{Territory: next, Income: income}
		return []turf.DomainEvent{evt}, nil
	})
	if err != nil {
		return ClaimResponse{}, err
	}
	return out, nil
}

// Preview reports what a claim at the current time would pay without
// touching any state.
func (u UseCase) Preview(ctx context.Context, plotID string) (PreviewResponse, error) {
	plotID = strings.TrimSpace(plotID)
	if plotID == "" {
		return PreviewResponse{}, ErrInvalidRequest
	}
	cfg, err := u.Config.Get(ctx)
	if err != nil {
		return PreviewResponse{}, err
	}
	plot, err := u.Plots.GetByID(ctx, plotID)
	if err != nil {
		return PreviewResponse{}, err
	}
	now := u.now()
	next := plot.LastIncomeClaim.Add(turf.ClaimIntervalSeconds * time.Second)
	income, err := turf.ComputeIncome(plot.CurrentIncome, plot.LastIncomeClaim, cfg.TaxRateBps, now)
	if errors.Is(err, turf.ErrTooEarly) {
		return PreviewResponse{NextClaimAt: next}, nil
	}
	if err != nil {
		return PreviewResponse{}, err
	}
	return PreviewResponse{
		Income:      income,
		Claimable:   cfg.Active && !plot.IsContested(),
		NextClaimAt: next,
	}, nil
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
