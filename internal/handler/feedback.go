package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-intake/internal/model"
	"property-intake/internal/service"
)

var validActions = map[string]bool{
	"click":        true,
	"contact":      true,
	"view_details": true,
}

// FeedbackHandler records what users do with matched listings
type FeedbackHandler struct {
	matchService *service.MatchService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(matchService *service.MatchService) *FeedbackHandler {
	return &FeedbackHandler{matchService: matchService}
}

func (h *FeedbackHandler) Register(api *gin.RouterGroup) {
	api.POST("/feedback", h.Submit)
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, contact, view_details"})
		return
	}

	err := h.matchService.LogFeedback(c.Request.Context(), req.SessionID, req.ListingID, req.Action)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}
