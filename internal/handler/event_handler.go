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

// EventHandler exposes event browsing and lifecycle endpoints.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type filterResponse struct {
	Success bool                 `json:"success"`
	Data    []models.EventDetail `json:"data"`
}

type filterError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Filter godoc
// @Summary Browse events with structured filters
// @Tags Events
// @Produce json
// @Param eventType query string false "Event category"
// @Param startDate query string false "Earliest date (YYYY-MM-DD)"
// @Param endDate query string false "Latest date (YYYY-MM-DD)"
// @Param maxPrice query number false "Maximum ticket price"
// @Param locationType query string false "virtual or in-person"
// @Success 200 {object} filterResponse
// @Router /events/filter [get]
func (h *EventHandler) Filter(c *gin.Context) {
	filter := service.BrowseFilter{
		EventType:    strings.TrimSpace(c.Query("eventType")),
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
		LocationType: c.Query("locationType"),
	}
	if raw := c.Query("maxPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, filterError{Success: false, Error: "invalid maxPrice"})
			return
		}
		filter.MaxPrice = &price
	}

	events, err := h.events.Browse(c.Request.Context(), filter)
	if err != nil {
		appErr := appErrors.FromError(err)
		c.JSON(appErr.Status, filterError{Success: false, Error: appErr.Message})
		return
	}
	c.JSON(http.StatusOK, filterResponse{Success: true, Data: events})
}

// Get godoc
// @Summary Get event detail
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// ListMine godoc
// @Summary List events organized by the caller
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/mine [get]
func (h *EventHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	events, err := h.events.ListByOrganizer(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body models.EventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid event payload"))
		return
	}

	event, err := h.events.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body models.EventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid event payload"))
		return
	}

	event, err := h.events.Update(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role == models.RoleAdmin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.events.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role == models.RoleAdmin); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
