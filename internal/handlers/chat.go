package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/socialapp/socialapp/internal/middleware"
	"github.com/socialapp/socialapp/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetPartners lists the accounts the caller has a conversation with.
func (h *ChatHandler) GetPartners(c *gin.Context) {
	userID := middleware.GetUserID(c)

	partners, err := h.chatService.Partners(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

// OpenChat returns the chat id with the named user, creating the chat
// on first contact.
func (h *ChatHandler) OpenChat(c *gin.Context) {
	userID := middleware.GetUserID(c)
	username := c.Param("username")

	chat, err := h.chatService.OpenOrCreateChat(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	chatID := c.Param("id")

	messages, err := h.chatService.LoadMessages(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, len(messages))
	for i, msg := range messages {
		payload[i] = gin.H{
			"sender":    msg.Sender.Username,
			"content":   msg.Content,
			"timestamp": msg.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"messages": payload})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID := middleware.GetUserID(c)

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id and content are required"})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), senderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sender":    message.Sender.Username,
		"content":   message.Content,
		"timestamp": message.CreatedAt.Format(time.RFC3339),
	})
}
