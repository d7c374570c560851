package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"property-intake/internal/model"
	"property-intake/internal/service"
)

// ListingHandler handles listing match requests
type ListingHandler struct {
	matchService *service.MatchService
	defaultLimit int
	maxLimit     int
}

// NewListingHandler creates a new listing handler
func NewListingHandler(matchService *service.MatchService, defaultLimit, maxLimit int) *ListingHandler {
	return &ListingHandler{
		matchService: matchService,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Register mounts the listing routes on api
func (h *ListingHandler) Register(api *gin.RouterGroup) {
	api.GET("/chat/sessions/:id/matches", h.SessionMatches)
	api.GET("/listings/:id", h.GetListing)
	api.GET("/listings/:id/similar", h.Similar)
}

// SessionMatches handles GET /api/v1/chat/sessions/:id/matches?top_k=&offset=
func (h *ListingHandler) SessionMatches(c *gin.Context) {
	opts := model.MatchOptions{
		TopK:   h.limit(c.Query("top_k")),
		Offset: queryInt(c.Query("offset"), 0),
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	response, err := h.matchService.MatchSession(c.Request.Context(), c.Param("id"), opts)
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Match failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetListing handles GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.matchService.GetListing(c.Request.Context(), listingID)
	if errors.Is(err, service.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Similar handles GET /api/v1/listings/:id/similar?limit=
func (h *ListingHandler) Similar(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	response, err := h.matchService.Similar(c.Request.Context(), listingID, h.limit(c.Query("limit")))
	if errors.Is(err, service.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find similar listings: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// limit validates and caps a page size
func (h *ListingHandler) limit(raw string) int {
	n := queryInt(raw, h.defaultLimit)
	if n <= 0 {
		n = h.defaultLimit
	}
	if n > h.maxLimit {
		n = h.maxLimit
	}
	return n
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
