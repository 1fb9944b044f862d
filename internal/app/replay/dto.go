package replay

import "turfcontrol/internal/domain/turf"

type Request struct {
	PlotID       string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type PlotSnapshot struct {
	Owner          string `json:"owner"`
	SecurityLevel  int    `json:"security_level"`
	CurrentIncome  uint64 `json:"current_income"`
	UnderAttack    bool   `json:"under_attack"`
	AttackWins     uint32 `json:"attack_wins"`
	DefenseWins    uint32 `json:"defense_wins"`
	LastAttackTime int64  `json:"last_attack_time,omitempty"`
}

type Response struct {
	Events      []turf.DomainEvent `json:"events"`
	LatestState PlotSnapshot       `json:"latest_state"`
}
