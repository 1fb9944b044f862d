package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"turfcontrol/internal/app/accrual"
	"turfcontrol/internal/app/auth"
	"turfcontrol/internal/app/capture"
	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/app/registry"
	"turfcontrol/internal/app/replay"
	"turfcontrol/internal/app/status"
	"turfcontrol/internal/app/upgrade"
	"turfcontrol/internal/domain/turf"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const playerIDHeader = "X-Player-ID"
const playerKeyHeader = "X-Player-Key"

type Handler struct {
	RegisterUC auth.RegisterUseCase
	AuthUC     auth.VerifyUseCase
	RegistryUC registry.UseCase
	AccrualUC  accrual.UseCase
	UpgradeUC  upgrade.UseCase
	CaptureUC  capture.UseCase
	StatusUC   status.UseCase
	ReplayUC   replay.UseCase
	KPI        kpiSnapshotProvider
	Index      eventIndexReader
	Metrics    http.Handler
	// OpenInitialize lets an authenticated player claim the authority role
	// over HTTP. Off unless the server runs on the in-memory store.
	OpenInitialize bool
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	player := s.Group("/api/player")
	player.POST("/register", h.register)

	reg := s.Group("/api/registry")
	reg.POST("/initialize", h.initialize)
	reg.GET("/config", h.getConfig)
	reg.PATCH("/config", h.updateConfig)

	plots := s.Group("/api/plots")
	plots.POST("", h.registerPlot)
	plots.GET("/:plot_id", h.plotStatus)
	plots.GET("/:plot_id/income", h.previewIncome)
	plots.POST("/:plot_id/claim", h.claimIncome)
	plots.POST("/:plot_id/security", h.upgradeSecurity)
	plots.POST("/:plot_id/businesses", h.addBusiness)
	plots.POST("/:plot_id/attack", h.attack)
	plots.POST("/:plot_id/resolve", h.resolve)
	plots.GET("/:plot_id/events", h.replay)

	s.GET("/api/owners/:owner", h.ownerStatus)
	s.GET("/ops/kpi", h.kpi)
	s.GET("/ops/index", h.indexSnapshot)
	s.GET("/ops/index/owners/:owner", h.indexOwnerPlots)
	if h.Metrics != nil {
		s.GET("/metrics", adaptor.HertzHandler(h.Metrics))
	}
}

type initializeRequest struct {
	Treasury string `json:"treasury"`
}

type registerPlotRequest struct {
	District   string `json:"district"`
	PlotIndex  uint16 `json:"plot_index"`
	BaseIncome uint64 `json:"base_income"`
}

type investmentRequest struct {
	Investment uint64 `json:"investment"`
}

type addBusinessRequest struct {
	BusinessType string `json:"business_type"`
	Investment   uint64 `json:"investment"`
}

type attackRequest struct {
	AttackerPlotID string `json:"attacker_plot_id"`
}

type resolveRequest struct {
	AttackerPlotID string `json:"attacker_plot_id"`
	Success        *bool  `json:"success"`
}

func (h Handler) register(c context.Context, ctx *app.RequestContext) {
	resp, err := h.RegisterUC.Execute(c, auth.RegisterRequest{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

// initialize makes the calling player the registry authority.
func (h Handler) initialize(c context.Context, ctx *app.RequestContext) {
	if !h.OpenInitialize {
		writeErrorBody(ctx, consts.StatusForbidden, "not_authorized", "registry is initialized from server configuration")
		return
	}
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body initializeRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	cfg, err := h.RegistryUC.Initialize(c, registry.InitializeRequest{Authority: caller, Treasury: body.Treasury})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, cfg)
}

func (h Handler) getConfig(c context.Context, ctx *app.RequestContext) {
	cfg, err := h.RegistryUC.GetConfig(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, cfg)
}

func (h Handler) updateConfig(c context.Context, ctx *app.RequestContext) {
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var patch turf.ConfigPatch
	if err := decodeJSON(ctx, &patch); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	cfg, err := h.RegistryUC.UpdateConfig(c, registry.UpdateConfigRequest{Caller: caller, Patch: patch})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, cfg)
}

func (h Handler) registerPlot(c context.Context, ctx *app.RequestContext) {
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body registerPlotRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.RegistryUC.RegisterPlot(c, registry.RegisterRequest{
		Owner:      caller,
		District:   body.District,
		PlotIndex:  body.PlotIndex,
		BaseIncome: body.BaseIncome,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) plotStatus(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Plot(c, ctx.Param("plot_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) ownerStatus(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Owner(c, ctx.Param("owner"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) previewIncome(c context.Context, ctx *app.RequestContext) {
	resp, err := h.AccrualUC.Preview(c, ctx.Param("plot_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) claimIncome(c context.Context, ctx *app.RequestContext) {
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	resp, err := h.AccrualUC.ClaimIncome(c, accrual.ClaimRequest{PlotID: ctx.Param("plot_id"), Caller: caller})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) upgradeSecurity(c context.Context, ctx *app.RequestContext) {
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body investmentRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.UpgradeUC.UpgradeSecurity(c, upgrade.SecurityRequest{
		PlotID:     ctx.Param("plot_id"),
		Caller:     caller,
		Investment: body.Investment,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) addBusiness(c context.Context, ctx *app.RequestContext) {
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body addBusinessRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.UpgradeUC.AddBusiness(c, upgrade.BusinessRequest{
		PlotID:       ctx.Param("plot_id"),
		Caller:       caller,
		BusinessType: body.BusinessType,
		Investment:   body.Investment,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) attack(c context.Context, ctx *app.RequestContext) {
	caller, err := h.requireAuthenticatedPlayer(c, ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body attackRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.CaptureUC.Attack(c, capture.AttackRequest{
		AttackerPlotID: body.AttackerPlotID,
		DefenderPlotID: ctx.Param("plot_id"),
		Caller:         caller,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusAccepted, resp)
}

func (h Handler) resolve(c context.Context, ctx *app.RequestContext) {
	if _, err := h.requireAuthenticatedPlayer(c, ctx); err != nil {
		writeError(ctx, err)
		return
	}
	var body resolveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Success == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "success is required")
		return
	}
	resp, err := h.CaptureUC.Resolve(c, capture.ResolveRequest{
		DefenderPlotID: ctx.Param("plot_id"),
		AttackerPlotID: body.AttackerPlotID,
		Success:        *body.Success,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		PlotID:       ctx.Param("plot_id"),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

type eventIndexReader interface {
	SnapshotAny(ctx context.Context) (any, error)
	PlotsByOwner(ctx context.Context, owner string) ([]string, error)
}

func (h Handler) indexSnapshot(c context.Context, ctx *app.RequestContext) {
	if h.Index == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "event index not configured")
		return
	}
	snap, err := h.Index.SnapshotAny(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

// indexOwnerPlots lists plots the event index last saw owned by :owner.
func (h Handler) indexOwnerPlots(c context.Context, ctx *app.RequestContext) {
	if h.Index == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "event index not configured")
		return
	}
	owner := strings.TrimSpace(ctx.Param("owner"))
	if owner == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "owner is required")
		return
	}
	plots, err := h.Index.PlotsByOwner(c, owner)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"owner": owner, "plot_ids": plots})
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

var ErrMissingPlayerIDHeader = errors.New("missing x-player-id header")
var ErrMissingPlayerKeyHeader = errors.New("missing x-player-key header")
var ErrMissingPlayerCredentials = errors.New("missing player credentials")

func (h Handler) requireAuthenticatedPlayer(c context.Context, ctx *app.RequestContext) (string, error) {
	playerID := strings.TrimSpace(string(ctx.GetHeader(playerIDHeader)))
	playerKey := strings.TrimSpace(string(ctx.GetHeader(playerKeyHeader)))
	if playerID == "" && playerKey == "" {
		return "", ErrMissingPlayerCredentials
	}
	if playerID == "" {
		return "", ErrMissingPlayerIDHeader
	}
	if playerKey == "" {
		return "", ErrMissingPlayerKeyHeader
	}
	if err := h.AuthUC.Execute(c, auth.VerifyRequest{
		PlayerID:  playerID,
		PlayerKey: playerKey,
	}); err != nil {
		return "", err
	}
	return playerID, nil
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingPlayerCredentials):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_player_credentials", err.Error())
	case errors.Is(err, ErrMissingPlayerIDHeader):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_player_id", err.Error())
	case errors.Is(err, ErrMissingPlayerKeyHeader):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_player_key", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_player_credentials", err.Error())
	case errors.Is(err, turf.ErrAttackCooldownActive):
		var cd *turf.AttackCooldownActiveError
		if errors.As(err, &cd) && cd != nil {
			writeErrorBodyWithDetails(ctx, consts.StatusConflict, "attack_cooldown_active", err.Error(),
				map[string]any{"remaining_seconds": cd.RemainingSeconds})
			return
		}
		writeErrorBody(ctx, consts.StatusConflict, "attack_cooldown_active", err.Error())
	case errors.Is(err, turf.ErrTooEarly):
		var early *turf.ClaimTooEarlyError
		if errors.As(err, &early) && early != nil {
			writeErrorBodyWithDetails(ctx, http.StatusTooEarly, "too_early", err.Error(),
				map[string]any{"remaining_seconds": early.RemainingSeconds})
			return
		}
		writeErrorBody(ctx, http.StatusTooEarly, "too_early", err.Error())
	case errors.Is(err, turf.ErrInactive):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "registry_inactive", err.Error())
	case errors.Is(err, turf.ErrCapacityExceeded):
		writeErrorBody(ctx, consts.StatusConflict, "capacity_exceeded", err.Error())
	case errors.Is(err, turf.ErrValidation):
		writeErrorBody(ctx, consts.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, turf.ErrUnauthorized):
		writeErrorBody(ctx, consts.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, turf.ErrStateConflict):
		writeErrorBody(ctx, consts.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, ports.ErrInsufficientFunds):
		writeErrorBody(ctx, http.StatusPaymentRequired, "insufficient_funds", err.Error())
	case errors.Is(err, auth.ErrInvalidRequest),
		errors.Is(err, registry.ErrInvalidRequest),
		errors.Is(err, accrual.ErrInvalidRequest),
		errors.Is(err, upgrade.ErrInvalidRequest),
		errors.Is(err, capture.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeErrorBodyWithDetails(ctx *app.RequestContext, status int, code, message string, details map[string]any) {
	ctx.JSON(status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
