package handler

import (
	"net/http"

	"travel_crm_backend/internal/analytics/service"
	"travel_crm_backend/internal/analytics/transport"
	"travel_crm_backend/internal/auth"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidAgentID = "invalid agent id"

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) bindStats(c *gin.Context) (transport.StatsRequest, bool) {
	var req transport.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.BindError(c, err)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return req, false
	}
	return req, true
}

func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	h.agentStats(c, auth.ActorFromIdentity(id), id.UserID())
}

func (h *Handler) Agent(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAgentID, nil)
		return
	}
	h.agentStats(c, auth.ActorFromIdentity(id), agentID)
}

func (h *Handler) agentStats(c *gin.Context, actor auth.Actor, agentID uuid.UUID) {
	req, ok := h.bindStats(c)
	if !ok {
		return
	}
	res, err := h.svc.AgentStats(c.Request.Context(), actor, agentID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	req, ok := h.bindStats(c)
	if !ok {
		return
	}
	res, err := h.svc.Leaderboard(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) UpsertTarget(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAgentID, nil)
		return
	}
	var req transport.UpsertTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return
	}

	if httpkit.HandleError(c, h.svc.UpsertTarget(c.Request.Context(), agentID, req)) {
		return
	}
	httpkit.OK(c, gin.H{"agentId": agentID, "month": req.Month})
}
