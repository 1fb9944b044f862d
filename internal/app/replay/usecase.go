package replay

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

// Execute returns the plot's events inside the requested window, newest
// first and capped at Limit. LatestState folds the full history up to
// OccurredTo, so a narrow window or a small limit never drops the mint.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.PlotID) == "" {
		return Response{}, ErrInvalidRequest
	}
	all, err := u.Events.ListByPlotID(ctx, req.PlotID, 0)
	if err != nil {
		return Response{}, err
	}
	state := reconstruct(filterByTimeWindow(all, 0, req.OccurredTo))
	events := filterByTimeWindow(all, req.OccurredFrom, req.OccurredTo)
	if req.Limit > 0 && len(events) > req.Limit {
		events = events[:req.Limit]
	}
	return Response{Events: events, LatestState: state}, nil
}

func filterByTimeWindow(events []turf.DomainEvent, from, to int64) []turf.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]turf.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// reconstruct folds event payloads oldest first. Contest events filed under
// the attacking plot only move its win counter and cooldown.
func reconstruct(events []turf.DomainEvent) PlotSnapshot {
	ordered := make([]turf.DomainEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})

	state := PlotSnapshot{}
	for _, evt := range ordered {
		p := evt.Payload
		if turf.IsAttackerView(evt) {
			if evt.Type == turf.EventAttackResolved {
				if ok, _ := p["successful"].(bool); ok {
					state.AttackWins++
				}
				state.LastAttackTime = evt.OccurredAt.Unix()
			}
			continue
		}
		switch evt.Type {
		case turf.EventTerritoryMinted:
			state.Owner, _ = p["owner"].(string)
			state.SecurityLevel = turf.InitialSecurityLevel
			state.CurrentIncome = uintField(p["base_income"])
		case turf.EventSecurityUpgraded:
			state.SecurityLevel = int(uintField(p["new_security_level"]))
		case turf.EventBusinessAdded, turf.EventIncomeClaimed:
			state.CurrentIncome = uintField(p["current_income"])
		case turf.EventTerritoryAttacked:
			state.UnderAttack = true
		case turf.EventAttackResolved:
			state.UnderAttack = false
			if ok, _ := p["successful"].(bool); ok {
				state.Owner, _ = p["attacker"].(string)
			} else {
				state.DefenseWins++
			}
			if _, has := p["security_level"]; has {
				state.SecurityLevel = int(uintField(p["security_level"]))
			}
		}
	}
	return state
}

// uintField reads a non-negative integer payload field. In-process payloads
// carry native integers; payloads read back from storage carry json.Number.
func uintField(v any) uint64 {
	switch n := v.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u
		}
		if f, err := n.Float64(); err == nil && f > 0 {
			return uint64(f)
		}
	case float64:
		if n > 0 {
			return uint64(n)
		}
	case int:
		if n > 0 {
			return uint64(n)
		}
	case int64:
		if n > 0 {
			return uint64(n)
		}
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	}
	return 0
}
