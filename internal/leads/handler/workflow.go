package handler

import (
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RecordFollowUp(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.RecordFollowUpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.followups.Record(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, res)
}

func (h *Handler) Reassign(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.ReassignLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.assignment.Reassign(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) MarkNoResponse(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.lifecycle.MarkNoResponse(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) AllocateToOperations(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.lifecycle.AllocateToOperations(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) RequestFeedback(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.FeedbackRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.lifecycle.RequestFeedback(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) Confirm(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.ConfirmLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.lifecycle.Confirm(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, res)
}

func (h *Handler) ReceiptUploadURL(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}
	var req transport.ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.receipts.UploadURL(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) ReceiptDownloadURL(c *gin.Context) {
	actor, leadID, ok := actorAndLead(c)
	if !ok {
		return
	}

	res, err := h.receipts.DownloadURL(c.Request.Context(), actor, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}
