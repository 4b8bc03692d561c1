package handler

import (
	"net/http"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/leads/assignment"
	"travel_crm_backend/internal/leads/followup"
	"travel_crm_backend/internal/leads/lifecycle"
	"travel_crm_backend/internal/leads/management"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidLeadID = "invalid lead id"

// Handler serves the lead endpoints. Every route sits behind AuthRequired.
type Handler struct {
	mgmt       *management.Service
	receipts   *management.ReceiptService
	assignment *assignment.Service
	followups  *followup.Service
	lifecycle  *lifecycle.Service
	val        *validator.Validator
}

func New(
	mgmt *management.Service,
	receipts *management.ReceiptService,
	assign *assignment.Service,
	followups *followup.Service,
	lc *lifecycle.Service,
	val *validator.Validator,
) *Handler {
	return &Handler{
		mgmt:       mgmt,
		receipts:   receipts,
		assignment: assign,
		followups:  followups,
		lifecycle:  lc,
		val:        val,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/almost-confirmed", h.ListAlmostConfirmed)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", httpkit.RequireRole(auth.RoleAdmin), h.Delete)
	rg.POST("/:id/calls", h.LogCall)

	rg.GET("/:id/follow-ups", h.ListFollowUps)
	rg.POST("/:id/follow-ups", h.RecordFollowUp)
	rg.PUT("/:id/assign", httpkit.RequireRole(auth.RoleAdmin), h.Reassign)
	rg.POST("/:id/no-response", h.MarkNoResponse)
	rg.POST("/:id/allocate-operations", httpkit.RequireRole(auth.RoleAdmin), h.AllocateToOperations)
	rg.POST("/:id/feedback-request", h.RequestFeedback)
	rg.POST("/:id/confirm", h.Confirm)

	rg.POST("/:id/confirmation/receipt-url", h.ReceiptUploadURL)
	rg.GET("/:id/confirmation/receipt", h.ReceiptDownloadURL)
}

// actorAndLead resolves the caller and the :id path parameter. It writes
// the error response itself and reports false when the request should stop.
func actorAndLead(c *gin.Context) (auth.Actor, uuid.UUID, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return auth.Actor{}, uuid.Nil, false
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return auth.Actor{}, uuid.Nil, false
	}
	return auth.ActorFromIdentity(id), leadID, true
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.BindError(c, err)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body for requests whose fields are all optional.
func (h *Handler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bindJSON(c, req)
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.BindError(c, err)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return false
	}
	return true
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.mgmt.Create(c.Request.Context(), auth.ActorFromIdentity(id), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, res)
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	var req transport.ListLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	res, err := h.mgmt.List(c.Request.Context(), auth.ActorFromIdentity(id), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) ListAlmostConfirmed(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	var req transport.PageRequest
	if !h.bindQuery(c, &req) {
		return
	}

	items, err := h.mgmt.ListAlmostConfirmed(c.Request.Context(), auth.ActorFromIdentity(id), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}

	lead, err := h.mgmt.GetByID(c.Request.Context(), actor, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.mgmt.Update(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.mgmt.Delete(c.Request.Context(), actor, leadID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LogCall(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.LogCallRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.mgmt.LogCall(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, res)
}

func (h *Handler) ListFollowUps(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.PageRequest
	if !h.bindQuery(c, &req) {
		return
	}

	res, err := h.mgmt.ListFollowUps(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}
