package turf

import (
	"strings"
	"time"
)

func NewTerritory(id, owner string, district District, plotIndex uint16, baseIncome uint64, now time.Time) Territory {
	return Territory{
		ID:              id,
		Owner:           owner,
		District:        district,
		PlotIndex:       plotIndex,
		BaseIncome:      baseIncome,
		CurrentIncome:   baseIncome,
		SecurityLevel:   InitialSecurityLevel,
		LastIncomeClaim: now,
		Businesses:      []Business{},
		Version:         1,
	}
}

func (t Territory) IsContested() bool {
	return t.UnderAttack
}

func (t Territory) IsOwnedBy(caller string) bool {
	caller = strings.TrimSpace(caller)
	return caller != "" && caller == t.Owner
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Territory) Clone() Territory {
	out := t
	out.Businesses = make([]Business, len(t.Businesses))
	copy(out.Businesses, t.Businesses)
	if t.Contest != nil {
		c := *t.Contest
		out.Contest = &c
	}
	return out
}

func (t Territory) TotalIncomeBoost() uint64 {
	var sum uint64
	for _, b := range t.Businesses {
		sum += b.IncomeBoost
	}
	return sum
}

// Validate checks the record-level invariants including the plot index range.
func (t Territory) Validate(totalPlots uint32) error {
	if t.PlotIndex == 0 || uint32(t.PlotIndex) > totalPlots {
		return ErrInvalidPlotIndex
	}
	return t.CheckInvariants()
}

// CheckInvariants checks the invariants that hold for every stored territory.
// Stores call it on every write.
func (t Territory) CheckInvariants() error {
	if t.PlotIndex == 0 {
		return ErrInvariantViolation
	}
	if t.SecurityLevel > MaxSecurityLevel {
		return ErrInvariantViolation
	}
	if len(t.Businesses) > MaxBusinesses {
		return ErrInvariantViolation
	}
	if t.CurrentIncome != t.BaseIncome+t.TotalIncomeBoost() {
		return ErrInvariantViolation
	}
	if t.UnderAttack != (t.Contest != nil) {
		return ErrInvariantViolation
	}
	return nil
}

func (c Config) CanIssue() bool {
	return c.PlotsIssued < c.TotalPlots
}

type ConfigPatch struct {
	Active                *bool   `json:"active,omitempty"`
	TaxRateBps            *uint16 `json:"tax_rate_bps,omitempty"`
	AttackCooldownSeconds *int64  `json:"attack_cooldown_seconds,omitempty"`
	BaseIncomeRate        *uint64 `json:"base_income_rate,omitempty"`
}

func (p ConfigPatch) IsEmpty() bool {
	return p.Active == nil && p.TaxRateBps == nil && p.AttackCooldownSeconds == nil && p.BaseIncomeRate == nil
}

// Apply validates the patch against the authority and returns the updated config.
func (c Config) Apply(caller string, p ConfigPatch) (Config, error) {
	if strings.TrimSpace(caller) == "" || caller != c.Authority {
		return c, ErrNotAuthority
	}
	if p.TaxRateBps != nil && *p.TaxRateBps > BasisPointsScale {
		return c, ErrInvalidTaxRate
	}
	if p.AttackCooldownSeconds != nil && *p.AttackCooldownSeconds < 0 {
		return c, ErrInvalidCooldown
	}
	out := c
	if p.Active != nil {
		out.Active = *p.Active
	}
	if p.TaxRateBps != nil {
		out.TaxRateBps = *p.TaxRateBps
	}
	if p.AttackCooldownSeconds != nil {
		out.AttackCooldownSeconds = *p.AttackCooldownSeconds
	}
	if p.BaseIncomeRate != nil {
		out.BaseIncomeRate = *p.BaseIncomeRate
	}
	out.Version = c.Version + 1
	return out, nil
}
