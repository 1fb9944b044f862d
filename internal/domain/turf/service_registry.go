package turf

import (
	"strings"
	"time"
)

type RegisterInput struct {
	PlotID     string
	Owner      string
	District   District
	PlotIndex  uint16
	BaseIncome uint64
}

// Register issues a new territory out of the pool. The returned config has
// PlotsIssued incremented; nothing is returned on error.
func (r Rules) Register(cfg Config, in RegisterInput, now time.Time) (Config, Territory, DomainEvent, error) {
	if !cfg.Active {
		return Config{}, Territory{}, DomainEvent{}, ErrInactive
	}
	if !cfg.CanIssue() {
		return Config{}, Territory{}, DomainEvent{}, ErrMaxTerritoriesReached
	}
	if in.PlotIndex == 0 || uint32(in.PlotIndex) > cfg.TotalPlots {
		return Config{}, Territory{}, DomainEvent{}, ErrInvalidPlotIndex
	}
	if in.BaseIncome == 0 {
		return Config{}, Territory{}, DomainEvent{}, ErrInvalidIncome
	}
	if _, ok := ParseDistrict(string(in.District)); !ok {
		return Config{}, Territory{}, DomainEvent{}, ErrInvalidDistrict
	}
	owner := strings.TrimSpace(in.Owner)
	if owner == "" || strings.TrimSpace(in.PlotID) == "" {
		return Config{}, Territory{}, DomainEvent{}, ErrInvalidOwner
	}

	t := NewTerritory(in.PlotID, owner, in.District, in.PlotIndex, in.BaseIncome, now)
	next := cfg
	next.PlotsIssued++
	next.Version++
	return next, t, TerritoryMinted(t, now), nil
}
