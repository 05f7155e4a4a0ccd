package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/chat"
)

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	chat *chat.Service
	log  *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(chatService *chat.Service, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		chat: chatService,
		log:  logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=64"`
	Description *string `json:"description"`
}

// CreateRoom handles room creation. Creating a room also registers its
// live topic, so joins and publishes immediately after see it.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	room, err := h.chat.CreateRoom(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		status, msg := statusForChatError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	h.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Str("user_id", userID).Msg("room created")
	c.JSON(http.StatusCreated, chat.NewRoomPayload(room))
}

// ListRooms handles listing rooms, newest first.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.chat.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		status, msg := statusForChatError(err)
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	response := make([]chat.RoomPayload, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, chat.NewRoomPayload(room))
	}

	c.JSON(http.StatusOK, response)
}
