package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fenway-events/eventhub-api/internal/models"
	"github.com/fenway-events/eventhub-api/internal/service"
)

// ChatbotHandler exposes the natural-language event suggestion endpoint.
// Its wire shape predates the envelope used elsewhere and is kept for
// client compatibility.
type ChatbotHandler struct {
	chatbot *service.ChatbotService
}

// NewChatbotHandler constructs ChatbotHandler.
func NewChatbotHandler(chatbot *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbot: chatbot}
}

type suggestRequest struct {
	Prompt string `json:"prompt"`
}

type suggestResponse struct {
	Success  bool                   `json:"success"`
	Events   []models.EventDetail   `json:"events"`
	Criteria *models.FilterCriteria `json:"criteria"`
}

type suggestError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SuggestEvents godoc
// @Summary Suggest events from a natural-language prompt
// @Tags Chatbot
// @Accept json
// @Produce json
// @Param payload body suggestRequest true "Natural-language prompt"
// @Success 200 {object} suggestResponse
// @Failure 500 {object} suggestError
// @Router /chatbot/suggest-events [post]
func (h *ChatbotHandler) SuggestEvents(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, suggestError{Success: false, Error: "prompt is required"})
		return
	}

	events, criteria, err := h.chatbot.SuggestEvents(c.Request.Context(), req.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, suggestError{Success: false, Error: "could not process request"})
		return
	}

	c.JSON(http.StatusOK, suggestResponse{Success: true, Events: events, Criteria: criteria})
}
