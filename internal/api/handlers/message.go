package handlers

import (
	"net/http"

	"social-service/internal/api/middleware"
	"social-service/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	chat *service.ChatService
}

func NewMessageHandler(chat *service.ChatService) *MessageHandler {
	return &MessageHandler{chat: chat}
}

type sendMessageRequest struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Text       string `json:"text"`
}

// Send godoc
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body sendMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} map[string]string
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	msg, err := h.chat.Send(middleware.UserID(c), req.ReceiverID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// History returns the conversation with one other user, oldest
// first.
func (h *MessageHandler) History(c *gin.Context) {
	friendID, ok := parseID(c, "friendId")
	if !ok {
		return
	}

	msgs, err := h.chat.History(middleware.UserID(c), friendID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, ok := parseID(c, "messageId")
	if !ok {
		return
	}

	if err := h.chat.Delete(messageID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
