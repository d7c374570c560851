package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-intake/internal/model"
	"property-intake/internal/service"
)

// LeadHandler handles lead and market data requests
type LeadHandler struct {
	leadService *service.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

func (h *LeadHandler) Register(api *gin.RouterGroup) {
	api.POST("/leads", h.Create)
	api.GET("/leads", h.List)
	api.GET("/leads/:id", h.Get)
	api.GET("/distributions/localities", h.Distributions)
}

// Create handles POST /api/v1/leads
func (h *LeadHandler) Create(c *gin.Context) {
	var req model.CreateLeadBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), req.Query, req.Extra)
	if errors.Is(err, service.ErrEmptyRequirement) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter your property requirements"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create lead: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// List handles GET /api/v1/leads
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.leadService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch leads: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
}

// Get handles GET /api/v1/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leadService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrLeadNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch lead: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Distributions handles GET /api/v1/distributions/localities?location=
func (h *LeadHandler) Distributions(c *gin.Context) {
	data, err := h.leadService.Distributions(c.Request.Context(), c.Query("location"))
	if errors.Is(err, service.ErrEmptyLocation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch distributions: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}
