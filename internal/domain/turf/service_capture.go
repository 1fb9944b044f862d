package turf

import "time"

// CooldownRemaining reports the seconds left before an attacker whose last
// attack resolved at lastAttack may attack again. A zero lastAttack never blocks.
func CooldownRemaining(lastAttack time.Time, cooldownSeconds int64, now time.Time) (int64, bool) {
	if lastAttack.IsZero() || cooldownSeconds <= 0 {
		return 0, false
	}
	elapsed := now.Unix() - lastAttack.Unix()
	if elapsed >= cooldownSeconds {
		return 0, false
	}
	return cooldownSeconds - elapsed, true
}

// EvaluateAttack is the capture roll: (100 - attackerSecurity + random) > defenderSecurity.
func EvaluateAttack(attackerSecurity, defenderSecurity, randomFactor uint8) AttackOutcome {
	attackPower := uint8(MaxSecurityLevel) - min(attackerSecurity, MaxSecurityLevel)
	randomFactor %= RandomFactorModulus
	return AttackOutcome{
		AttackPower:  attackPower,
		DefensePower: defenderSecurity,
		RandomFactor: randomFactor,
		Success:      int(attackPower)+int(randomFactor) > int(defenderSecurity),
	}
}

// Attack moves the defender from Idle to Contested and records the outcome
// for ResolveAttack. Ownership is untouched.
func (r Rules) Attack(cfg Config, attacker, defender Territory, caller string, randomFactor uint8, now time.Time) (Territory, AttackOutcome, DomainEvent, error) {
	if !cfg.Active {
		return Territory{}, AttackOutcome{}, DomainEvent{}, ErrInactive
	}
	if !attacker.IsOwnedBy(caller) {
		return Territory{}, AttackOutcome{}, DomainEvent{}, ErrNotOwner
	}
	if attacker.ID == defender.ID {
		return Territory{}, AttackOutcome{}, DomainEvent{}, ErrCannotAttackSelf
	}
	if defender.IsContested() {
		return Territory{}, AttackOutcome{}, DomainEvent{}, ErrTerritoryUnderAttack
	}
	if remaining, active := CooldownRemaining(attacker.LastAttackTime, cfg.AttackCooldownSeconds, now); active {
		return Territory{}, AttackOutcome{}, DomainEvent{}, &AttackCooldownActiveError{RemainingSeconds: remaining}
	}

	out := EvaluateAttack(attacker.SecurityLevel, defender.SecurityLevel, randomFactor)
	next := defender.Clone()
	next.UnderAttack = true
	next.Contest = &Contest{
		AttackerPlotID: attacker.ID,
		AttackerOwner:  attacker.Owner,
		PendingSuccess: out.Success,
		RandomFactor:   out.RandomFactor,
		AttackPower:    out.AttackPower,
		DefensePower:   out.DefensePower,
		StartedAt:      now,
	}
	next.Version = defender.Version + 1
	return next, out, TerritoryAttacked(attacker, next, out, now), nil
}

type Resolution struct {
	Attacker      Territory
	Defender      Territory
	PreviousOwner string
	Successful    bool
	Event         DomainEvent
}

// Resolve moves the defender back to Idle. On success the defender changes
// hands to the attacker plot's current owner. The attacker cooldown restarts
// either way.
func (r Rules) Resolve(attacker, defender Territory, success bool, now time.Time) (Resolution, error) {
	if !defender.IsContested() || defender.Contest == nil {
		return Resolution{}, ErrNoActiveAttack
	}
	if defender.Contest.AttackerPlotID != attacker.ID {
		return Resolution{}, ErrAttackerMismatch
	}
	if defender.Contest.PendingSuccess != success {
		return Resolution{}, ErrOutcomeMismatch
	}

	prevOwner := defender.Owner
	a := attacker.Clone()
	d := defender.Clone()
	if success {
		d.Owner = a.Owner
		a.AttackWins++
	} else {
		d.DefenseWins++
	}
	d.UnderAttack = false
	d.Contest = nil
	a.LastAttackTime = now
	a.Version = attacker.Version + 1
	d.Version = defender.Version + 1

	return Resolution{
		Attacker:      a,
		Defender:      d,
		PreviousOwner: prevOwner,
		Successful:    success,
		Event:         AttackResolved(a, prevOwner, d, success, now),
	}, nil
}
