package handler

import (
	"net/http"

	"travel_crm_backend/internal/itineraries/service"
	"travel_crm_backend/internal/itineraries/transport"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListItinerariesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return
	}

	res, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return
	}

	res, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, res)
}

func (h *Handler) SetActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BindError(c, err)
		return
	}

	if httpkit.HandleError(c, h.svc.SetActive(c.Request.Context(), id, req.IsActive)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "isActive": req.IsActive})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid itinerary id", nil)
		return uuid.Nil, false
	}
	return id, true
}
