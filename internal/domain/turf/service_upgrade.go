package turf

import (
	"math/bits"
	"time"
)

// SecurityDelta is min(investment / unitCost, MaxSecurityLevel - level).
func (r Rules) SecurityDelta(level uint8, investment uint64) uint8 {
	unit := r.Tuning.SecurityUnitCost
	if unit == 0 {
		unit = DefaultSecurityUnitCost
	}
	if level >= MaxSecurityLevel {
		return 0
	}
	headroom := uint64(MaxSecurityLevel - level)
	points := investment / unit
	if points > headroom {
		points = headroom
	}
	return uint8(points)
}

// IncomeBoost is investment * multiplier(type) / scale, truncated.
func (r Rules) IncomeBoost(bt BusinessType, investment uint64) (uint64, error) {
	m, ok := r.Tuning.multiplierTenths(bt)
	if !ok {
		return 0, ErrInvalidBusiness
	}
	scale := r.Tuning.BusinessBoostScale
	if scale == 0 {
		scale = DefaultBusinessBoostScale
	}
	div := scale * 10
	hi, lo := bits.Mul64(investment, m)
	if hi >= div {
		return 0, ErrIncomeOverflow
	}
	q, _ := bits.Div64(hi, lo, div)
	return q, nil
}

// UpgradeSecurity applies a paid security upgrade. The investment is burned by
// the caller even when it buys zero points.
func (r Rules) UpgradeSecurity(t Territory, caller string, investment uint64, now time.Time) (Territory, DomainEvent, error) {
	if !t.IsOwnedBy(caller) {
		return Territory{}, DomainEvent{}, ErrNotOwner
	}
	if investment == 0 {
		return Territory{}, DomainEvent{}, ErrInvalidInvestment
	}
	if t.SecurityLevel >= MaxSecurityLevel {
		return Territory{}, DomainEvent{}, ErrMaxSecurityReached
	}

	out := t.Clone()
	out.SecurityLevel += r.SecurityDelta(t.SecurityLevel, investment)
	out.Version = t.Version + 1
	return out, SecurityUpgraded(out, investment, now), nil
}

func (r Rules) AddBusiness(t Territory, caller string, bt BusinessType, investment uint64, now time.Time) (Territory, Business, DomainEvent, error) {
	if !t.IsOwnedBy(caller) {
		return Territory{}, Business{}, DomainEvent{}, ErrNotOwner
	}
	if investment == 0 {
		return Territory{}, Business{}, DomainEvent{}, ErrInvalidInvestment
	}
	if len(t.Businesses) >= MaxBusinesses {
		return Territory{}, Business{}, DomainEvent{}, ErrMaxBusinessesReached
	}
	boost, err := r.IncomeBoost(bt, investment)
	if err != nil {
		return Territory{}, Business{}, DomainEvent{}, err
	}
	income, carry := bits.Add64(t.CurrentIncome, boost, 0)
	if carry != 0 {
		return Territory{}, Business{}, DomainEvent{}, ErrIncomeOverflow
	}

	b := Business{
		Type:        bt,
		Investment:  investment,
		IncomeBoost: boost,
		CreatedAt:   now,
	}
	out := t.Clone()
	out.Businesses = append(out.Businesses, b)
	out.CurrentIncome = income
	out.Version = t.Version + 1
	return out, b, BusinessAdded(out, b, now), nil
}
