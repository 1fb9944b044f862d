package turf

const (
	DefaultTotalPlots            = 2500
	DefaultBaseIncomeRate        = 10_000_000
	DefaultTaxRateBps            = 2000
	DefaultAttackCooldownSeconds = 172800

	BasisPointsScale = 10000

	InitialSecurityLevel = 50
	MaxSecurityLevel     = 100
	MaxBusinesses        = 5

	ClaimIntervalSeconds = 86400

	// 0.1 token in base units buys one security point.
	DefaultSecurityUnitCost = 100_000_000
	// boost = investment * multiplier / BusinessBoostScale
	DefaultBusinessBoostScale = 1000

	RandomFactorModulus = 100
)

// Multipliers are kept in tenths so the boost stays integer arithmetic.
var businessMultiplierTenths = map[BusinessType]uint64{
	BusinessRestaurant:   12,
	BusinessNightclub:    15,
	BusinessCasino:       20,
	BusinessConstruction: 13,
	BusinessShipping:     18,
}

type Tuning struct {
	SecurityUnitCost   uint64                  `yaml:"security_unit_cost"`
	BusinessBoostScale uint64                  `yaml:"business_boost_scale"`
	Multipliers        map[BusinessType]uint64 `yaml:"business_multiplier_tenths"`
}

func DefaultTuning() Tuning {
	m := make(map[BusinessType]uint64, len(businessMultiplierTenths))
	for k, v := range businessMultiplierTenths {
		m[k] = v
	}
	return Tuning{
		SecurityUnitCost:   DefaultSecurityUnitCost,
		BusinessBoostScale: DefaultBusinessBoostScale,
		Multipliers:        m,
	}
}

// Normalized fills zero fields from the defaults and drops multipliers for
// unknown business types or outside [1.0, 2.0].
func (t Tuning) Normalized() Tuning {
	def := DefaultTuning()
	if t.SecurityUnitCost == 0 {
		t.SecurityUnitCost = def.SecurityUnitCost
	}
	if t.BusinessBoostScale == 0 {
		t.BusinessBoostScale = def.BusinessBoostScale
	}
	merged := def.Multipliers
	for k, v := range t.Multipliers {
		if _, known := merged[k]; !known || v < 10 || v > 20 {
			continue
		}
		merged[k] = v
	}
	t.Multipliers = merged
	return t
}

func (t Tuning) multiplierTenths(bt BusinessType) (uint64, bool) {
	if t.Multipliers != nil {
		if v, ok := t.Multipliers[bt]; ok {
			return v, true
		}
	}
	v, ok := businessMultiplierTenths[bt]
	return v, ok
}

func DefaultConfig(authority, treasury string) Config {
	return Config{
		Authority:             authority,
		TreasuryAccount:       treasury,
		TotalPlots:            DefaultTotalPlots,
		BaseIncomeRate:        DefaultBaseIncomeRate,
		TaxRateBps:            DefaultTaxRateBps,
		AttackCooldownSeconds: DefaultAttackCooldownSeconds,
		Active:                true,
		Version:               1,
	}
}
