package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/chat"
)

// MessageHandlers provides HTTP handlers for room message endpoints.
type MessageHandlers struct {
	chat *chat.Service
	log  *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(chatService *chat.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		chat: chatService,
		log:  logger,
	}
}

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"message_type"`
}

// ListMessages handles fetching a page of room history, newest first.
// GET /api/rooms/:room_id/messages?limit=50&offset=0
func (h *MessageHandlers) ListMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.chat.ListMessages(c.Request.Context(), roomID, limit, offset)
	if err != nil {
		status, msg := statusForChatError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list messages")
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	response := make([]chat.MessagePayload, 0, len(messages))
	for _, msg := range messages {
		response = append(response, chat.NewMessagePayload(msg))
	}

	c.JSON(http.StatusOK, response)
}

// SendMessage handles the request/response send path. It runs the same
// persist-then-publish path as the live transport, so subscribers of
// the room see the message too.
// POST /api/rooms/:room_id/messages
func (h *MessageHandlers) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	roomID := c.Param("room_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), roomID, userID, req.Content, req.MessageType)
	if err != nil {
		status, errMsg := statusForChatError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("failed to send message")
		}
		c.JSON(status, ErrorResponse{Error: errMsg})
		return
	}

	c.JSON(http.StatusCreated, chat.NewMessagePayload(msg))
}
