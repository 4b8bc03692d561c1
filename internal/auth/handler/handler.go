package handler

import (
	"travel_crm_backend/internal/auth/service"
	"travel_crm_backend/internal/auth/transport"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	profile, err := h.svc.GetMe(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ProfileResponse{
		ID:        profile.ID.String(),
		Name:      profile.Name,
		Email:     profile.Email,
		Phone:     profile.Phone,
		Role:      profile.Role,
		Status:    profile.Status,
		Roles:     id.Roles(),
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	})
}

func (h *Handler) ListUsers(c *gin.Context) {
	var query transport.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.BindError(c, err)
		return
	}

	users, err := h.svc.ListUsers(c.Request.Context(), query.Role, query.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.UserSummary, 0, len(users))
	for _, u := range users {
		items = append(items, transport.UserSummary{
			ID:     u.ID.String(),
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
			Status: u.Status,
		})
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) UpdatePushToken(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.UpdatePushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return
	}

	if httpkit.HandleError(c, h.svc.UpdatePushToken(c.Request.Context(), id.UserID(), req.Token)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "push token updated"})
}
