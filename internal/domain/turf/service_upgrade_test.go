package turf

import (
	"errors"
	"testing"
	"time"
)

func TestRules_UpgradeSecurity_NeverExceedsMax(t *testing.T) {
	rules := NewRules(DefaultTuning())
	now := time.Unix(1_700_000_000, 0)
	investments := []uint64{1, DefaultSecurityUnitCost - 1, DefaultSecurityUnitCost, 7 * DefaultSecurityUnitCost, 1 << 62}

	for _, level := range []uint8{0, 50, 93, 99} {
		for _, inv := range investments {
			plot := testTerritory(now)
			plot.SecurityLevel = level

			out, evt, err := rules.UpgradeSecurity(plot, "alice", inv, now)
			if err != nil {
				t.Fatalf("level=%d inv=%d: %v", level, inv, err)
			}
			want := inv / DefaultSecurityUnitCost
			if headroom := uint64(MaxSecurityLevel - level); want > headroom {
				want = headroom
			}
			if uint64(out.SecurityLevel-level) != want {
				t.Fatalf("level=%d inv=%d: expected +%d, got level %d", level, inv, want, out.SecurityLevel)
			}
			if out.SecurityLevel > MaxSecurityLevel {
				t.Fatalf("security above max: %d", out.SecurityLevel)
			}
			if evt.Payload["new_security_level"] != out.SecurityLevel {
				t.Fatalf("event level mismatch: %+v", evt.Payload)
			}
		}
	}
}

func TestRules_UpgradeSecurity_Rejections(t *testing.T) {
	rules := NewRules(DefaultTuning())
	now := time.Unix(1_700_000_000, 0)
	plot := testTerritory(now)

	if _, _, err := rules.UpgradeSecurity(plot, "bob", 1, now); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if _, _, err := rules.UpgradeSecurity(plot, "alice", 0, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	plot.SecurityLevel = MaxSecurityLevel
	if _, _, err := rules.UpgradeSecurity(plot, "alice", DefaultSecurityUnitCost, now); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
}

func TestRules_AddBusiness_SixthCallFails(t *testing.T) {
	rules := NewRules(DefaultTuning())
	now := time.Unix(1_700_000_000, 0)
	plot := testTerritory(now)
	types := []BusinessType{BusinessRestaurant, BusinessNightclub, BusinessCasino, BusinessConstruction, BusinessShipping}

	var boosts uint64
	for i, bt := range types {
		var (
			b   Business
			err error
		)
		plot, b, _, err = rules.AddBusiness(plot, "alice", bt, 10_000, now)
		if err != nil {
			t.Fatalf("business %d: %v", i, err)
		}
		boosts += b.IncomeBoost
		if plot.CurrentIncome != plot.BaseIncome+boosts {
			t.Fatalf("business %d: current income %d != base %d + boosts %d", i, plot.CurrentIncome, plot.BaseIncome, boosts)
		}
	}
	if _, _, _, err := rules.AddBusiness(plot, "alice", BusinessCasino, 10_000, now); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded on sixth business, got %v", err)
	}
	if err := plot.Validate(DefaultTotalPlots); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestRules_IncomeBoost_Multipliers(t *testing.T) {
	rules := NewRules(DefaultTuning())
	cases := map[BusinessType]uint64{
		BusinessRestaurant:   12,
		BusinessNightclub:    15,
		BusinessCasino:       20,
		BusinessConstruction: 13,
		BusinessShipping:     18,
	}
	for bt, want := range cases {
		got, err := rules.IncomeBoost(bt, 10_000)
		if err != nil {
			t.Fatalf("%s: %v", bt, err)
		}
		if got != want {
			t.Fatalf("%s: expected boost %d, got %d", bt, want, got)
		}
	}
	if _, err := rules.IncomeBoost(BusinessType("arcade"), 10_000); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation for unknown type, got %v", err)
	}
}

func TestRules_AddBusiness_Rejections(t *testing.T) {
	rules := NewRules(DefaultTuning())
	now := time.Unix(1_700_000_000, 0)
	plot := testTerritory(now)

	if _, _, _, err := rules.AddBusiness(plot, "bob", BusinessCasino, 1, now); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, _, err := rules.AddBusiness(plot, "alice", BusinessCasino, 0, now); !errors.Is(err, ErrInvalidInvestment) {
		t.Fatalf("expected invalid investment, got %v", err)
	}
}

func TestTuning_NormalizedIgnoresOutOfRange(t *testing.T) {
	tun := Tuning{Multipliers: map[BusinessType]uint64{
		BusinessCasino:     25,
		BusinessRestaurant: 11,
		"arcade":           15,
	}}.Normalized()
	if tun.Multipliers[BusinessCasino] != 20 {
		t.Fatalf("expected casino to keep default, got %d", tun.Multipliers[BusinessCasino])
	}
	if tun.Multipliers[BusinessRestaurant] != 11 {
		t.Fatalf("expected restaurant override, got %d", tun.Multipliers[BusinessRestaurant])
	}
	if _, ok := tun.Multipliers["arcade"]; ok {
		t.Fatalf("unknown business type must be dropped")
	}
	if tun.SecurityUnitCost != DefaultSecurityUnitCost || tun.BusinessBoostScale != DefaultBusinessBoostScale {
		t.Fatalf("expected defaults, got %+v", tun)
	}
}
