package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("already exists")

// User represents a registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room is a durable, named conversation scope. Rooms are never deleted.
type Room struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is a persisted chat message. Messages are append-only; the
// store assigns the ID and creation timestamp.
type Message struct {
	ID        string
	RoomID    string
	UserID    string
	Content   string
	Kind      string
	CreatedAt time.Time
}

// Upload is metadata for a stored file.
type Upload struct {
	ID        string
	Filename  string
	Size      int64
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with an already-hashed password.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a new room and returns the full record.
	CreateRoom(ctx context.Context, name string, description *string) (*Room, error)

	// GetRoomByID retrieves a room by ID.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// ListRooms lists all rooms, newest first.
	ListRooms(ctx context.Context) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage appends a message and returns the materialized
	// record with its server-assigned ID and timestamp.
	SaveMessage(ctx context.Context, roomID, userID, content, kind string) (*Message, error)

	// ListMessages retrieves a page of a room's messages, newest
	// first.
	ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*Message, error)
}

// UploadStore handles file metadata persistence.
type UploadStore interface {
	// SaveUpload records metadata for a stored file.
	SaveUpload(ctx context.Context, id, filename string, size int64) (*Upload, error)

	// GetUpload retrieves upload metadata by ID.
	GetUpload(ctx context.Context, id string) (*Upload, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	UploadStore

	// Close closes the underlying database connection.
	Close() error
}
