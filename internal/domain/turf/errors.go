package turf

import (
	"errors"
	"fmt"
)

// Error kinds. Every rule violation wraps exactly one of these.
var (
	ErrInactive         = errors.New("registry inactive")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("not authorized")
	ErrStateConflict    = errors.New("state conflict")
	ErrTooEarly         = errors.New("too early")
)

var (
	ErrMaxTerritoriesReached = fmt.Errorf("%w: maximum territories reached", ErrCapacityExceeded)
	ErrMaxSecurityReached    = fmt.Errorf("%w: maximum security level reached", ErrCapacityExceeded)
	ErrMaxBusinessesReached  = fmt.Errorf("%w: maximum businesses reached", ErrCapacityExceeded)

	ErrInvalidPlotIndex   = fmt.Errorf("%w: invalid plot index", ErrValidation)
	ErrInvalidIncome      = fmt.Errorf("%w: invalid income amount", ErrValidation)
	ErrInvalidInvestment  = fmt.Errorf("%w: invalid investment amount", ErrValidation)
	ErrInvalidDistrict    = fmt.Errorf("%w: invalid district", ErrValidation)
	ErrInvalidBusiness    = fmt.Errorf("%w: invalid business type", ErrValidation)
	ErrInvalidOwner       = fmt.Errorf("%w: invalid owner", ErrValidation)
	ErrInvalidTaxRate     = fmt.Errorf("%w: tax rate above 10000 bps", ErrValidation)
	ErrInvalidCooldown    = fmt.Errorf("%w: negative attack cooldown", ErrValidation)
	ErrCannotAttackSelf   = fmt.Errorf("%w: cannot attack own territory", ErrValidation)
	ErrAttackerMismatch   = fmt.Errorf("%w: attacker does not match pending attack", ErrValidation)
	ErrOutcomeMismatch    = fmt.Errorf("%w: outcome does not match pending attack", ErrValidation)
	ErrIncomeOverflow     = fmt.Errorf("%w: income overflow", ErrValidation)
	ErrInvariantViolation = fmt.Errorf("%w: territory invariant violated", ErrValidation)

	ErrNotOwner     = fmt.Errorf("%w: not the owner of this territory", ErrUnauthorized)
	ErrNotAuthority = fmt.Errorf("%w: not the registry authority", ErrUnauthorized)

	ErrTerritoryUnderAttack = fmt.Errorf("%w: territory is under attack", ErrStateConflict)
	ErrAttackCooldownActive = fmt.Errorf("%w: attack cooldown is active", ErrStateConflict)
	ErrNoActiveAttack       = fmt.Errorf("%w: no active attack to resolve", ErrStateConflict)
	ErrPlotIndexTaken       = fmt.Errorf("%w: plot index already issued", ErrStateConflict)
	ErrAlreadyInitialized   = fmt.Errorf("%w: registry already initialized", ErrStateConflict)

	ErrClaimTooEarly = fmt.Errorf("%w: too early to claim income", ErrTooEarly)
)

type AttackCooldownActiveError struct {
	RemainingSeconds int64
}

func (e *AttackCooldownActiveError) Error() string {
	return fmt.Sprintf("%s (%ds remaining)", ErrAttackCooldownActive.Error(), e.RemainingSeconds)
}

func (e *AttackCooldownActiveError) Unwrap() error {
	return ErrAttackCooldownActive
}

type ClaimTooEarlyError struct {
	RemainingSeconds int64
}

func (e *ClaimTooEarlyError) Error() string {
	return fmt.Sprintf("%s (%ds remaining)", ErrClaimTooEarly.Error(), e.RemainingSeconds)
}

func (e *ClaimTooEarlyError) Unwrap() error {
	return ErrClaimTooEarly
}
