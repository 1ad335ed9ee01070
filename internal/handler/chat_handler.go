package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stackmentor/backend/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// POST /api/chat/session
func (h *ChatHandler) CreateSession(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	session, err := h.chatService.CreateSession(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GET /api/chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	sessions, err := h.chatService.ListSessions(claims.UserID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GET /api/chat/session/:id/messages
func (h *ChatHandler) GetSessionMessages(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	messages, err := h.chatService.GetSessionMessages(claims.UserID, sessionID)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// DELETE /api/chat/session/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	if err := h.chatService.DeleteSession(claims.UserID, sessionID); err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat session deleted successfully"})
}

type SendMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// POST /api/chat/message
// A degraded (model-failure) turn still returns 200 with an
// assistant-style reply; only validation and ownership problems reject
// the request.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), claims.UserID, sessionID, req.Content)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    result.Reply,
		"session_id": result.SessionID,
		"degraded":   result.Degraded,
	})
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content must not be empty"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this chat session"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
