package turf

import (
	"maps"
	"time"
)

const (
	EventTerritoryMinted   = "territory_minted"
	EventIncomeClaimed     = "income_claimed"
	EventSecurityUpgraded  = "security_upgraded"
	EventTerritoryAttacked = "territory_attacked"
	EventAttackResolved    = "attack_resolved"
	EventBusinessAdded     = "business_added"
	EventConfigUpdated     = "config_updated"
)

// RoleAttacker marks the copy of a contest event filed under the attacking plot.
const RoleAttacker = "attacker"

func TerritoryMinted(t Territory, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventTerritoryMinted,
		PlotID:     t.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"plot_id":     t.ID,
			"owner":       t.Owner,
			"district":    string(t.District),
			"plot_index":  t.PlotIndex,
			"base_income": t.BaseIncome,
			"time":        now.Unix(),
		},
	}
}

func IncomeClaimed(t Territory, b IncomeBreakdown, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventIncomeClaimed,
		PlotID:     t.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"plot_id":        t.ID,
			"owner":          t.Owner,
			"gross":          b.Gross,
			"net":            b.Net,
			"tax":            b.Tax,
			"days_claimed":   b.Days,
			"current_income": t.CurrentIncome,
			"time":           now.Unix(),
		},
	}
}

func SecurityUpgraded(t Territory, investment uint64, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventSecurityUpgraded,
		PlotID:     t.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"plot_id":            t.ID,
			"owner":              t.Owner,
			"investment":         investment,
			"new_security_level": t.SecurityLevel,
			"time":               now.Unix(),
		},
	}
}

func TerritoryAttacked(attacker, defender Territory, out AttackOutcome, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventTerritoryAttacked,
		PlotID:     defender.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"attacker":      attacker.Owner,
			"attacker_plot": attacker.ID,
			"defender_plot": defender.ID,
			"attack_power":  out.AttackPower,
			"defense_power": out.DefensePower,
			"success":       out.Success,
			"time":          now.Unix(),
		},
	}
}

func AttackResolved(attacker Territory, defenderOwner string, defender Territory, successful bool, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventAttackResolved,
		PlotID:     defender.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"attacker":       attacker.Owner,
			"attacker_plot":  attacker.ID,
			"defender":       defenderOwner,
			"plot_id":        defender.ID,
			"successful":     successful,
			"security_level": defender.SecurityLevel,
			"time":           now.Unix(),
		},
	}
}

// AttackerView copies a contest event onto the attacking plot's history.
func AttackerView(e DomainEvent) DomainEvent {
	payload := make(map[string]any, len(e.Payload)+1)
	maps.Copy(payload, e.Payload)
	payload["role"] = RoleAttacker
	plotID, _ := e.Payload["attacker_plot"].(string)
	return DomainEvent{Type: e.Type, PlotID: plotID, OccurredAt: e.OccurredAt, Payload: payload}
}

func IsAttackerView(e DomainEvent) bool {
	role, _ := e.Payload["role"].(string)
	return role == RoleAttacker
}

func BusinessAdded(t Territory, b Business, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventBusinessAdded,
		PlotID:     t.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"plot_id":        t.ID,
			"owner":          t.Owner,
			"business_type":  string(b.Type),
			"investment":     b.Investment,
			"income_boost":   b.IncomeBoost,
			"current_income": t.CurrentIncome,
			"time":           now.Unix(),
		},
	}
}

func ConfigUpdated(c Config, now time.Time) DomainEvent {
	return DomainEvent{
		Type:       EventConfigUpdated,
		OccurredAt: now,
		Payload: map[string]any{
			"active":                  c.Active,
			"tax_rate_bps":            c.TaxRateBps,
			"attack_cooldown_seconds": c.AttackCooldownSeconds,
			"base_income_rate":        c.BaseIncomeRate,
			"time":                    now.Unix(),
		},
	}
}
