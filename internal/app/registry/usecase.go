package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/app/shared/txop"
	"turfcontrol/internal/domain/turf"

	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("invalid registry request")

const (
	OpInitialize   = "initialize"
	OpRegisterPlot = "register_plot"
	OpUpdateConfig = "update_config"
)

type UseCase struct {
	Runner  txop.Runner
	Config  ports.ConfigRepository
	Plots   ports.PlotRepository
	Custody ports.AssetCustody
	Rules   turf.Rules
	NewID   func() string
	Now     func() time.Time
}

func (u UseCase) Initialize(ctx context.Context, req InitializeRequest) (turf.Config, error) {
	req.Authority = strings.TrimSpace(req.Authority)
	req.Treasury = strings.TrimSpace(req.Treasury)
	if req.Authority == "" || req.Treasury == "" {
		return turf.Config{}, ErrInvalidRequest
	}

	cfg := turf.DefaultConfig(req.Authority, req.Treasury)
	_, err := u.Runner.Run(ctx, OpInitialize, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		_, err := u.Config.Get(txCtx)
		if err == nil {
			return nil, turf.ErrAlreadyInitialized
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
		if err := u.Config.Create(txCtx, cfg); err != nil {
			return nil, err
		}
		return []turf.DomainEvent{turf.ConfigUpdated(cfg, u.now())}, nil
	})
	if err != nil {
		return turf.Config{}, err
	}
	return cfg, nil
}

func (u UseCase) RegisterPlot(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	district, ok := turf.ParseDistrict(req.District)
	if !ok {
		return RegisterResponse{}, turf.ErrInvalidDistrict
	}
	now := u.now()
	in := turf.RegisterInput{
		PlotID:     u.newID(),
		Owner:      strings.TrimSpace(req.Owner),
		District:   district,
		PlotIndex:  req.PlotIndex,
		BaseIncome: req.BaseIncome,
	}

	var out RegisterResponse
	_, err := u.Runner.Run(ctx, OpRegisterPlot, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		cfg, err := u.Config.GetForUpdate(txCtx)
		if err != nil {
			return nil, err
		}
		next, plot, evt, err := u.Rules.Register(cfg, in, now)
		if err != nil {
			return nil, err
		}
		if err := plot.Validate(cfg.TotalPlots); err != nil {
			return nil, err
		}
		if _, err := u.Plots.GetByIndex(txCtx, plot.PlotIndex); err == nil {
			return nil, turf.ErrPlotIndexTaken
		} else if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}

		if err := u.Plots.Create(txCtx, plot); err != nil {
			return nil, err
		}
		if err := u.Config.SaveWithVersion(txCtx, next, cfg.Version); err != nil {
			return nil, err
		}
		if err := u.Custody.MintOne(txCtx, plot.ID, plot.Owner); err != nil {
			return nil, err
		}
		out = RegisterResponse{Territory: plot, Config: next}
		return []turf.DomainEvent{evt}, nil
	})
	if err != nil {
		return RegisterResponse{}, err
	}
	return out, nil
}

func (u UseCase) UpdateConfig(ctx context.Context, req UpdateConfigRequest) (turf.Config, error) {
	if req.Patch.IsEmpty() {
		return turf.Config{}, ErrInvalidRequest
	}
	var out turf.Config
	_, err := u.Runner.Run(ctx, OpUpdateConfig, func(txCtx context.Context) ([]turf.DomainEvent, error) {
		cfg, err := u.Config.GetForUpdate(txCtx)
		if err != nil {
			return nil, err
		}
		next, err := cfg.Apply(strings.TrimSpace(req.Caller), req.Patch)
		if err != nil {
			return nil, err
		}
		if err := u.Config.SaveWithVersion(txCtx, next, cfg.Version); err != nil {
			return nil, err
		}
		out = next
		return []turf.DomainEvent{turf.ConfigUpdated(next, u.now())}, nil
	})
	if err != nil {
		return turf.Config{}, err
	}
	return out, nil
}

func (u UseCase) GetConfig(ctx context.Context) (turf.Config, error) {
	return u.Config.Get(ctx)
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u UseCase) newID() string {
	if u.NewID == nil {
		return uuid.NewString()
	}
	return u.NewID()
}
