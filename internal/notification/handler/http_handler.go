package handler

import (
	"context"
	"net/http"

	"travel_crm_backend/internal/notification/inapp"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Inbox is the in-app notification service.
type Inbox interface {
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) (inapp.Page, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MessageSender delivers direct messages between users.
type MessageSender interface {
	SendMessage(ctx context.Context, senderID uuid.UUID, req inapp.MessageRequest) error
}

type HTTPHandler struct {
	svc     Inbox
	stream  gin.HandlerFunc
	message MessageSender
	val     *validator.Validator
}

func NewHTTPHandler(svc Inbox, stream gin.HandlerFunc, message MessageSender, val *validator.Validator) *HTTPHandler {
	return &HTTPHandler{svc: svc, stream: stream, message: message, val: val}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread-count", h.CountUnread)
	rg.PATCH("/:id/read", h.MarkRead)
	rg.POST("/read-all", h.MarkAllRead)
	rg.POST("/messages", h.SendMessage)
	rg.GET("/stream", h.stream)
}

type listQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=50"`
}

func (h *HTTPHandler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.BindError(c, err)
		return
	}

	page, err := h.svc.List(c.Request.Context(), identity.UserID(), q.Page, q.PageSize)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, page)
}

func (h *HTTPHandler) CountUnread(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), identity.UserID(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}

func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	updated, err := h.svc.MarkAllRead(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok", "updated": updated})
}

func (h *HTTPHandler) SendMessage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req inapp.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BindError(c, err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BindError(c, err)
		return
	}

	if httpkit.HandleError(c, h.message.SendMessage(c.Request.Context(), identity.UserID(), req)) {
		return
	}
	httpkit.Created(c, gin.H{"status": "sent"})
}
