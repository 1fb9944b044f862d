package registry

import "turfcontrol/internal/domain/turf"

type InitializeRequest struct {
	Authority string
	Treasury  string
}

type RegisterRequest struct {
	Owner      string
	District   string
	PlotIndex  uint16
	BaseIncome uint64
}

type RegisterResponse struct {
	Territory turf.Territory `json:"territory"`
	Config    turf.Config    `json:"config"`
}

type UpdateConfigRequest struct {
	Caller string
	Patch  turf.ConfigPatch
}
