package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-intake/internal/model"
	"property-intake/internal/service"
)

// EmbeddingHandler handles embedding uploads for similar-listing search
type EmbeddingHandler struct {
	matchService *service.MatchService
	dimension    int
}

// NewEmbeddingHandler creates a handler accepting vectors of the given dimension
func NewEmbeddingHandler(matchService *service.MatchService, dimension int) *EmbeddingHandler {
	return &EmbeddingHandler{
		matchService: matchService,
		dimension:    dimension,
	}
}

func (h *EmbeddingHandler) Register(api *gin.RouterGroup) {
	api.POST("/listings/embeddings/batch", h.BatchUpdate)
}

// BatchUpdate handles POST /api/v1/listings/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	// Validate embedding dimensions
	for i, item := range req.Embeddings {
		if len(item.Embedding) != h.dimension {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, h.dimension),
			})
			return
		}
	}

	success, errors := h.matchService.UpdateEmbeddings(c.Request.Context(), req.Embeddings)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errors,
	}

	if len(errors) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
