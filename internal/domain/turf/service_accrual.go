package turf

import (
	"math/bits"
	"time"
)

type Rules struct {
	Tuning Tuning
}

func NewRules(t Tuning) Rules {
	return Rules{Tuning: t.Normalized()}
}

// ComputeIncome returns the settlement for a claim made at now. It does not
// check ownership or the contention lock.
func ComputeIncome(currentIncome uint64, lastClaim time.Time, taxRateBps uint16, now time.Time) (IncomeBreakdown, error) {
	elapsed := now.Unix() - lastClaim.Unix()
	if elapsed < ClaimIntervalSeconds {
		remaining := int64(ClaimIntervalSeconds) - elapsed
		return IncomeBreakdown{}, &ClaimTooEarlyError{RemainingSeconds: remaining}
	}
	if taxRateBps > BasisPointsScale {
		return IncomeBreakdown{}, ErrInvalidTaxRate
	}
	days := uint64(elapsed / ClaimIntervalSeconds)

	hi, gross := bits.Mul64(currentIncome, days)
	if hi != 0 {
		return IncomeBreakdown{}, ErrIncomeOverflow
	}
	// hi < BasisPointsScale holds since taxRateBps <= BasisPointsScale.
	hi, lo := bits.Mul64(gross, uint64(taxRateBps))
	tax, _ := bits.Div64(hi, lo, BasisPointsScale)

	return IncomeBreakdown{
		Days:  days,
		Gross: gross,
		Tax:   tax,
		Net:   gross - tax,
	}, nil
}

// ClaimIncome settles accrued income. LastIncomeClaim moves to now, so any
// sub-day remainder is dropped.
func (r Rules) ClaimIncome(cfg Config, t Territory, caller string, now time.Time) (Territory, IncomeBreakdown, DomainEvent, error) {
	if !cfg.Active {
		return Territory{}, IncomeBreakdown{}, DomainEvent{}, ErrInactive
	}
	if !t.IsOwnedBy(caller) {
		return Territory{}, IncomeBreakdown{}, DomainEvent{}, ErrNotOwner
	}
	if t.IsContested() {
		return Territory{}, IncomeBreakdown{}, DomainEvent{}, ErrTerritoryUnderAttack
	}
	b, err := ComputeIncome(t.CurrentIncome, t.LastIncomeClaim, cfg.TaxRateBps, now)
	if err != nil {
		return Territory{}, IncomeBreakdown{}, DomainEvent{}, err
	}

	out := t.Clone()
	out.LastIncomeClaim = now
	out.Version = t.Version + 1
	return out, b, IncomeClaimed(out, b, now), nil
}
