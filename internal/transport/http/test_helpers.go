package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/auth"
	"github.com/konect-chat/konect-server/internal/chat"
	"github.com/konect-chat/konect-server/internal/config"
	"github.com/konect-chat/konect-server/internal/relay"
	"github.com/konect-chat/konect-server/internal/store/sqlite"
)

type testEnv struct {
	ts   *httptest.Server
	auth *auth.Service
	chat *chat.Service
}

// newTestEnv builds the full stack on an in-memory database and an
// httptest server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := zerolog.Nop()

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})

	registry := relay.NewRegistry(16)
	chatService := chat.NewService(st, registry, &logger)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.UploadDir = t.TempDir()
	cfg.JWTSecret = "test-secret"

	server := NewServer(chatService, authService, st, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, auth: authService, chat: chatService}
}

// registerUser creates an account directly through the auth service and
// returns its token and user ID.
func (e *testEnv) registerUser(t *testing.T, username, email string) (token, userID string) {
	t.Helper()

	token, user, err := e.auth.Register(context.Background(), username, email, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return token, user.ID
}

// createRoom creates a room directly through the chat service and
// returns its ID.
func (e *testEnv) createRoom(t *testing.T, name string) string {
	t.Helper()

	room, err := e.chat.CreateRoom(context.Background(), name, nil)
	if err != nil {
		t.Fatalf("create room %s: %v", name, err)
	}
	return room.ID
}
