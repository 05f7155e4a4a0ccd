package chat

import (
	"time"

	"github.com/konect-chat/konect-server/internal/store"
)

// MessagePayload is the JSON form of a persisted message. The same
// shape is broadcast to live subscribers and returned by the history
// and send endpoints, so every viewer of a message sees one record.
type MessagePayload struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMessagePayload maps a store record to its wire form.
func NewMessagePayload(m *store.Message) MessagePayload {
	return MessagePayload{
		ID:          m.ID,
		RoomID:      m.RoomID,
		UserID:      m.UserID,
		Content:     m.Content,
		MessageType: m.Kind,
		CreatedAt:   m.CreatedAt,
	}
}

// RoomPayload is the JSON form of a room record.
type RoomPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRoomPayload maps a store record to its wire form.
func NewRoomPayload(r *store.Room) RoomPayload {
	return RoomPayload{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
