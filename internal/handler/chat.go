package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-intake/internal/chat"
	"property-intake/internal/model"
	"property-intake/internal/service"
)

// ChatHandler handles the conversation endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Register mounts the chat routes on api
func (h *ChatHandler) Register(api *gin.RouterGroup) {
	sessions := api.Group("/chat/sessions")
	sessions.POST("", h.Initialize)
	sessions.GET("/:id", h.State)
	sessions.DELETE("/:id", h.Reset)
	sessions.POST("/:id/answers", h.SubmitAnswer)
	sessions.POST("/:id/messages", h.SendMessage)
	sessions.GET("/:id/summary", h.Summary)
	sessions.GET("/:id/events", h.Events)
}

// Initialize handles POST /api/v1/chat/sessions
func (h *ChatHandler) Initialize(c *gin.Context) {
	state, err := h.chatService.Initialize(c.Request.Context())
	if err != nil {
		writeChatError(c, state, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// State handles GET /api/v1/chat/sessions/:id
func (h *ChatHandler) State(c *gin.Context) {
	state, err := h.chatService.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeChatError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Reset handles DELETE /api/v1/chat/sessions/:id
func (h *ChatHandler) Reset(c *gin.Context) {
	state, err := h.chatService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeChatError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SubmitAnswer handles POST /api/v1/chat/sessions/:id/answers
func (h *ChatHandler) SubmitAnswer(c *gin.Context) {
	var req model.SubmitAnswerBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state, err := h.chatService.SubmitAnswer(c.Request.Context(), c.Param("id"), req.MessageID, req.Answer)
	if err != nil {
		writeChatError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SendMessage handles POST /api/v1/chat/sessions/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	state, err := h.chatService.SendMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		writeChatError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Summary handles GET /api/v1/chat/sessions/:id/summary
func (h *ChatHandler) Summary(c *gin.Context) {
	summary, err := h.chatService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeChatError(c, chat.State{}, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Events handles GET /api/v1/chat/sessions/:id/events - SSE stream of state snapshots
func (h *ChatHandler) Events(c *gin.Context) {
	sessionID := c.Param("id")
	state, err := h.chatService.State(c.Request.Context(), sessionID)
	if err != nil {
		writeChatError(c, state, err)
		return
	}

	updates, cancel := h.chatService.Subscribe(sessionID)
	defer cancel()

	setSSEHeaders(c)
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "state", state)
	flusher.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case next, open := <-updates:
			if !open {
				return
			}
			sendSSE(c, "state", next)
			flusher.Flush()
			// a reset session has no id left to follow
			if next.SessionID == nil {
				sendSSE(c, "done", nil)
				flusher.Flush()
				return
			}
		}
	}
}

// writeChatError maps orchestration errors to status codes. Backend failures still return
// the state so the client can render the error message.
func writeChatError(c *gin.Context, state chat.State, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	case errors.Is(err, service.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "Session is busy: " + err.Error()})
	case errors.Is(err, service.ErrQuestionAnswered):
		c.JSON(http.StatusConflict, gin.H{"error": "Question already answered"})
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, model.ErrInvalidAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
	case errors.Is(err, service.ErrBackend):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "state": state})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat request failed: " + err.Error()})
	}
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
