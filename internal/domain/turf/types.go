package turf

import (
	"strings"
	"time"
)

type District string

const (
	DistrictDowntown   District = "downtown"
	DistrictIndustrial District = "industrial"
	DistrictFinancial  District = "financial"
	DistrictHarbor     District = "harbor"
)

func ParseDistrict(raw string) (District, bool) {
	d := District(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case DistrictDowntown, DistrictIndustrial, DistrictFinancial, DistrictHarbor:
		return d, true
	default:
		return "", false
	}
}

type BusinessType string

const (
	BusinessRestaurant   BusinessType = "restaurant"
	BusinessNightclub    BusinessType = "nightclub"
	BusinessCasino       BusinessType = "casino"
	BusinessConstruction BusinessType = "construction"
	BusinessShipping     BusinessType = "shipping"
)

func ParseBusinessType(raw string) (BusinessType, bool) {
	t := BusinessType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := businessMultiplierTenths[t]; !ok {
		return "", false
	}
	return t, true
}

// Config is the registry singleton. PlotsIssued never exceeds TotalPlots.
type Config struct {
	Authority             string `json:"authority"`
	TreasuryAccount       string `json:"treasury_account"`
	TotalPlots            uint32 `json:"total_plots"`
	PlotsIssued           uint32 `json:"plots_issued"`
	BaseIncomeRate        uint64 `json:"base_income_rate"`
	TaxRateBps            uint16 `json:"tax_rate_bps"`
	AttackCooldownSeconds int64  `json:"attack_cooldown_seconds"`
	Active                bool   `json:"active"`
	Version               int64  `json:"version"`
}

type Business struct {
	Type        BusinessType `json:"type"`
	Investment  uint64       `json:"investment"`
	IncomeBoost uint64       `json:"income_boost"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Contest is the Contested{pendingSuccess} half of the capture state machine.
// A nil contest on a territory means Idle.
type Contest struct {
	AttackerPlotID string    `json:"attacker_plot_id"`
	AttackerOwner  string    `json:"attacker_owner"`
	PendingSuccess bool      `json:"pending_success"`
	RandomFactor   uint8     `json:"random_factor"`
	AttackPower    uint8     `json:"attack_power"`
	DefensePower   uint8     `json:"defense_power"`
	StartedAt      time.Time `json:"started_at"`
}

type Territory struct {
	ID              string     `json:"id"`
	Owner           string     `json:"owner"`
	District        District   `json:"district"`
	PlotIndex       uint16     `json:"plot_index"`
	BaseIncome      uint64     `json:"base_income"`
	CurrentIncome   uint64     `json:"current_income"`
	SecurityLevel   uint8      `json:"security_level"`
	LastIncomeClaim time.Time  `json:"last_income_claim"`
	LastAttackTime  time.Time  `json:"last_attack_time"`
	DefenseWins     uint32     `json:"defense_wins"`
	AttackWins      uint32     `json:"attack_wins"`
	UnderAttack     bool       `json:"under_attack"`
	Contest         *Contest   `json:"contest,omitempty"`
	Businesses      []Business `json:"businesses"`
	Version         int64      `json:"version"`
}

type DomainEvent struct {
	Type       string         `json:"type"`
	PlotID     string         `json:"plot_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

type IncomeBreakdown struct {
	Days  uint64 `json:"days"`
	Gross uint64 `json:"gross"`
	Tax   uint64 `json:"tax"`
	Net   uint64 `json:"net"`
}

type AttackOutcome struct {
	AttackPower  uint8 `json:"attack_power"`
	DefensePower uint8 `json:"defense_power"`
	RandomFactor uint8 `json:"random_factor"`
	Success      bool  `json:"success"`
}
