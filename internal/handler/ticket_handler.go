package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fenway-events/eventhub-api/internal/service"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
	"github.com/fenway-events/eventhub-api/pkg/response"
)

// TicketHandler exposes registration and ticket endpoints.
type TicketHandler struct {
	tickets *service.TicketService
	reports *service.ReportService
}

// NewTicketHandler constructs TicketHandler.
func NewTicketHandler(tickets *service.TicketService, reports *service.ReportService) *TicketHandler {
	return &TicketHandler{tickets: tickets, reports: reports}
}

// Register godoc
// @Summary Register for an event
// @Tags Tickets
// @Produce json
// @Param id path string true "Event ID"
// @Success 201 {object} response.Envelope
// @Router /events/{id}/register [post]
func (h *TicketHandler) Register(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ticket, err := h.tickets.Register(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ticket)
}

// Cancel godoc
// @Summary Cancel a registration
// @Tags Tickets
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id}/register [delete]
func (h *TicketHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.tickets.Cancel(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMine godoc
// @Summary List the caller's tickets
// @Tags Tickets
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tickets [get]
func (h *TicketHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	tickets, err := h.tickets.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tickets, nil)
}

// Pass godoc
// @Summary Download a PDF ticket pass
// @Tags Tickets
// @Produce application/pdf
// @Param id path string true "Ticket ID"
// @Success 200 {file} binary
// @Router /tickets/{id}/pass [get]
func (h *TicketHandler) Pass(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	pdf, err := h.tickets.RenderPass(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ticket-%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// Report godoc
// @Summary Report an event
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body reportRequest true "Report reason"
// @Success 201 {object} response.Envelope
// @Router /events/{id}/report [post]
func (h *TicketHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reason is required"))
		return
	}

	report, err := h.reports.Create(c.Request.Context(), c.Param("id"), claims.UserID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}
