package upgrade

import (
	"context"
	"errors"
	"strings"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/app/shared/txop"
	"turfcontrol/internal/domain/turf"
)

var ErrInvalidRequest = errors.New("invalid upgrade request")

const (
	OpUpgradeSecurity = "upgrade_security"
	OpAddBusiness     = "add_business"
)

type SecurityRequest struct {
	PlotID     string
	Caller     string
	Investment uint64
}

type SecurityResponse struct {
	Territory     turf.Territory `json:"territory"`
	SecurityDelta uint8          `json:"security_delta"`
}

type BusinessRequest struct {
	PlotID       string
	Caller       string
	BusinessType string
	Investment   uint64
}

type BusinessResponse struct {
	Territory turf.Territory `json:"territory"`
	Business  turf.Business  `json:"business"`
}

// UseCase applies paid upgrades. The investment is burned from the caller in
// the same transaction that records the upgrade.
type UseCase struct {
	Runner txop.Runner
	Plots  ports.PlotRepository
	Ledger ports.CurrencyLedger
	Rules  turf.Rules
	Now    func() time.Time
}

func (u UseCase) UpgradeSecurity(ctx context.Context, req SecurityRequest) (SecurityResponse, error) {
	req.PlotID = strings.TrimSpace(req.PlotID)
	req.Caller = strings.TrimSpace(req.Caller)
	if req.PlotID == "" || req.Caller == "" {
		return SecurityResponse{}, ErrInvalidRequest
	}
	now := u.now()

	var out SecurityResponse
	_, err := u.Runner.Run(ctx, OpUpgradeSecurity, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		plot, err := u.Plots.GetForUpdate(txCtx, req.PlotID)
		if err != nil {
			return nil, err
		}
		next, evt, err := u.Rules.UpgradeSecurity(plot, req.Caller, req.Investment, now)
		if err != nil {
			return nil, err
		}
		if err := u.Ledger.Burn(txCtx, req.Investment, req.Caller); err != nil {
			return nil, err
		}
		if err := u.Plots.SaveWithVersion(txCtx, next, plot.Version); err != nil {
			return nil, err
		}
		out = SecurityResponse{Territory: next, SecurityDelta: next.SecurityLevel - plot.SecurityLevel}
		return []turf.DomainEvent{evt}, nil
	})
	if err != nil {
		return SecurityResponse{}, err
	}
	return out, nil
}

func (u UseCase) AddBusiness(ctx context.Context, req BusinessRequest) (BusinessResponse, error) {
	req.PlotID = strings.TrimSpace(req.PlotID)
	req.Caller = strings.TrimSpace(req.Caller)
	if req.PlotID == "" || req.Caller == "" {
		return BusinessResponse{}, ErrInvalidRequest
	}
	bt, ok := turf.ParseBusinessType(req.BusinessType)
	if !ok {
		return BusinessResponse{}, turf.ErrInvalidBusiness
	}
	now := u.now()

	var out BusinessResponse
	_, err := u.Runner.Run(ctx, OpAddBusiness, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		plot, err := u.Plots.GetForUpdate(txCtx, req.PlotID)
		if err != nil {
			return nil, err
		}
		next, business, evt, err := u.Rules.AddBusiness(plot, req.Caller, bt, req.Investment, now)
		if err != nil {
			return nil, err
		}
		if err := u.Ledger.Burn(txCtx, req.Investment, req.Caller); err != nil {
			return nil, err
		}
		if err := u.Plots.SaveWithVersion(txCtx, next, plot.Version); err != nil {
			return nil, err
		}
		out = BusinessResponse{Territory: next, Business: business}
		return []turf.DomainEvent{evt}, nil
	})
	if err != nil {
		return BusinessResponse{}, err
	}
	return out, nil
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
