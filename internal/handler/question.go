package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"property-intake/internal/catalog"
	"property-intake/internal/model"
	"property-intake/internal/service"
)

// QuestionHandler serves the question catalog and the intent parser
type QuestionHandler struct {
	catalog *catalog.Catalog
	parser  *service.IntentParser
}

func NewQuestionHandler(cat *catalog.Catalog, parser *service.IntentParser) *QuestionHandler {
	return &QuestionHandler{catalog: cat, parser: parser}
}

func (h *QuestionHandler) Register(api *gin.RouterGroup) {
	api.GET("/questions", h.Questions)
	api.POST("/intent/parse", h.ParseIntent)
}

// Questions handles GET /api/v1/questions?bhk=&location=&property_type=
func (h *QuestionHandler) Questions(c *gin.Context) {
	var criteria model.Criteria
	if raw := c.Query("bhk"); raw != "" {
		bhk, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bhk"})
			return
		}
		criteria.BHK = &bhk
	}
	if loc := strings.TrimSpace(c.Query("location")); loc != "" {
		criteria.Location = &loc
	}
	if pt := strings.TrimSpace(c.Query("property_type")); pt != "" {
		criteria.PropertyType = &pt
	}

	questions := h.catalog.ForCriteria(criteria)
	c.JSON(http.StatusOK, gin.H{
		"set":       catalog.SetFor(criteria),
		"questions": questions,
		"count":     len(questions),
	})
}

// ParseIntent handles POST /api/v1/intent/parse
func (h *QuestionHandler) ParseIntent(c *gin.Context) {
	var req model.IntentParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	intent := h.parser.Parse(req.Message)
	criteria := intent.Criteria.AsCriteria()
	questions := h.catalog.ForCriteria(criteria)
	ctx := model.ConversationContext{
		ExtractedCriteria: criteria,
		AskedQuestionIDs:  []string{},
		AllAnswers:        map[string]any{},
	}

	c.JSON(http.StatusOK, model.IntentParseResponse{
		Intent:          *intent,
		Acknowledgment:  service.AcknowledgmentMessage(intent),
		NextQuestion:    service.SelectNextQuestion(ctx, questions),
		CatalogQuestion: len(questions),
	})
}
