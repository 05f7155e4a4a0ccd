package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/relay"
	"github.com/konect-chat/konect-server/internal/store"
)

const (
	// DefaultHistoryLimit is used when a history fetch names no limit.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single history page.
	MaxHistoryLimit = 200

	maxRoomNameLen = 64
)

// Service owns the persist-then-publish path shared by the live
// transport and the request/response API. A message is only ever
// published to a topic after its append succeeded.
type Service struct {
	store    store.Store
	registry *relay.Registry
	log      *zerolog.Logger
}

// NewService builds the chat service around a store and a topic
// registry.
func NewService(st store.Store, registry *relay.Registry, logger *zerolog.Logger) *Service {
	return &Service{
		store:    st,
		registry: registry,
		log:      logger,
	}
}

// Registry exposes the topic registry for transports that subscribe
// directly.
func (s *Service) Registry() *relay.Registry {
	return s.registry
}

// CreateRoom creates a durable room and eagerly registers its topic so
// the first publish after creation finds it.
func (s *Service) CreateRoom(ctx context.Context, name string, description *string) (*store.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxRoomNameLen {
		return nil, ErrInvalidRoomName
	}

	room, err := s.store.CreateRoom(ctx, name, description)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, wrapError(CodeDuplicate, "room with this name already exists", err)
		}
		return nil, wrapError(CodePersistenceFailure, "could not create room", err)
	}

	s.registry.GetOrCreate(room.ID)
	s.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Msg("room created")
	return room, nil
}

// GetRoom retrieves a room by ID.
func (s *Service) GetRoom(ctx context.Context, roomID string) (*store.Room, error) {
	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, wrapError(CodePersistenceFailure, "could not load room", err)
	}
	return room, nil
}

// ListRooms lists all rooms, newest first.
func (s *Service) ListRooms(ctx context.Context) ([]*store.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, wrapError(CodePersistenceFailure, "could not list rooms", err)
	}
	return rooms, nil
}

// ListMessages retrieves a page of a room's history, newest first.
func (s *Service) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*store.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, roomID, limit, offset)
	if err != nil {
		return nil, wrapError(CodePersistenceFailure, "could not list messages", err)
	}
	return messages, nil
}

// SendMessage appends a message and, once the append succeeded, fans
// the persisted record out to the room's live subscribers. A failed
// append aborts the send; nothing is ever broadcast for it. A room
// with no topic or no subscribers still gets the append — history is
// the source of truth for absent viewers.
func (s *Service) SendMessage(ctx context.Context, roomID, authorID, content, kind string) (*store.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if kind == "" {
		kind = "text"
	}

	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	msg, err := s.store.SaveMessage(ctx, roomID, authorID, content, kind)
	if err != nil {
		return nil, wrapError(CodePersistenceFailure, "could not save message", err)
	}

	payload, err := json.Marshal(NewMessagePayload(msg))
	if err != nil {
		// The record is durable; only the live fan-out is lost.
		return msg, fmt.Errorf("marshal message: %w", err)
	}

	if topic, ok := s.registry.Lookup(roomID); ok {
		topic.Publish(payload)
	}

	s.log.Debug().
		Str("room_id", roomID).
		Str("message_id", msg.ID).
		Str("user_id", authorID).
		Msg("message sent")
	return msg, nil
}
