package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fenway-events/eventhub-api/internal/models"
	"github.com/fenway-events/eventhub-api/internal/service"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
	"github.com/fenway-events/eventhub-api/pkg/response"
)

// AdminHandler exposes moderation and directory endpoints for administrators.
type AdminHandler struct {
	users   *service.UserService
	events  *service.EventService
	reports *service.ReportService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(users *service.UserService, events *service.EventService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{users: users, events: events, reports: reports}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

// ListUsers godoc
// @Summary List user accounts
// @Tags Admin
// @Produce json
// @Param search query string false "Search by email or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	users, pagination, err := h.users.List(c.Request.Context(), page, size, strings.TrimSpace(c.Query("search")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// DeactivateUser godoc
// @Summary Deactivate a user account
// @Tags Admin
// @Param id path string true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	if err := h.users.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEvents godoc
// @Summary List events for moderation
// @Tags Admin
// @Produce json
// @Param reported query bool false "Only reported events"
// @Param search query string false "Search names and descriptions"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/events [get]
func (h *AdminHandler) ListEvents(c *gin.Context) {
	filter := models.EventListFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pageParams(c)
	if raw := c.Query("reported"); raw != "" {
		reported := raw == "true"
		filter.Reported = &reported
	}

	events, pagination, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// ListReports godoc
// @Summary List moderation reports
// @Tags Admin
// @Produce json
// @Param status query string false "open, flagged or dismissed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/reports [get]
func (h *AdminHandler) ListReports(c *gin.Context) {
	page, size := pageParams(c)
	reports, pagination, err := h.reports.List(c.Request.Context(), c.Query("status"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

type resolveRequest struct {
	Flag bool `json:"flag"`
}

// ResolveReport godoc
// @Summary Resolve a moderation report
// @Tags Admin
// @Accept json
// @Param id path string true "Report ID"
// @Param payload body resolveRequest true "Flag or dismiss"
// @Success 204
// @Router /admin/reports/{id}/resolve [post]
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid resolve payload"))
		return
	}

	if err := h.reports.Resolve(c.Request.Context(), c.Param("id"), claims.UserID, req.Flag); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
