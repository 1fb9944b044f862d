package status

import (
	"context"
	"errors"
	"strings"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

var ErrInvalidRequest = errors.New("invalid status request")

type PlotResponse struct {
	Territory  turf.Territory `json:"territory"`
	TokenOwner string         `json:"token_owner"`
}

type OwnerResponse struct {
	Owner       string           `json:"owner"`
	Territories []turf.Territory `json:"territories"`
	Balance     uint64           `json:"balance"`
}

type UseCase struct {
	Plots   ports.PlotRepository
	Ledger  ports.CurrencyLedger
	Custody ports.AssetCustody
}

func (u UseCase) Plot(ctx context.Context, plotID string) (PlotResponse, error) {
	plotID = strings.TrimSpace(plotID)
	if plotID == "" {
		return PlotResponse{}, ErrInvalidRequest
	}
	plot, err := u.Plots.GetByID(ctx, plotID)
	if err != nil {
		return PlotResponse{}, err
	}
	out := PlotResponse{Territory: plot}
	if u.Custody != nil {
		holder, err := u.Custody.OwnerOf(ctx, plotID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return PlotResponse{}, err
		}
		out.TokenOwner = holder
	}
	return out, nil
}

func (u UseCase) Owner(ctx context.Context, owner string) (OwnerResponse, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return OwnerResponse{}, ErrInvalidRequest
	}
	plots, err := u.Plots.ListByOwner(ctx, owner)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return OwnerResponse{}, err
	}
	if plots == nil {
		plots = []turf.Territory{}
	}
	out := OwnerResponse{Owner: owner, Territories: plots}
	if u.Ledger != nil {
		balance, err := u.Ledger.BalanceOf(ctx, owner)
		if err != nil {
			return OwnerResponse{}, err
		}
		out.Balance = balance
	}
	return out, nil
}
