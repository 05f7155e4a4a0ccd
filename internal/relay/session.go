package relay

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/store"
)

// Conn is the duplex frame transport a session pumps. Frames are UTF-8
// text payloads; both methods return an error when the underlying
// connection is no longer usable.
type Conn interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteFrame(ctx context.Context, payload []byte) error
}

// MessageSender persists a chat message and fans it out to the room's
// topic. Publication must only happen after the append succeeded.
type MessageSender interface {
	SendMessage(ctx context.Context, roomID, authorID, content, kind string) (*store.Message, error)
}

// Session bridges one client connection to one room's topic. It owns
// its subscription and its two pumps; whichever pump stops first
// cancels the other so a closed transport never leaks a subscriber.
type Session struct {
	conn   Conn
	sub    *Subscription
	sender MessageSender
	roomID string
	userID string
	log    *zerolog.Logger
}

// NewSession pairs conn with an already-subscribed topic handle.
func NewSession(conn Conn, sub *Subscription, sender MessageSender, roomID, userID string, logger *zerolog.Logger) *Session {
	return &Session{
		conn:   conn,
		sub:    sub,
		sender: sender,
		roomID: roomID,
		userID: userID,
		log:    logger,
	}
}

// Run drives both pumps until one of them finishes, then cancels and
// waits for the other. The subscription is closed before returning.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.sub.Close()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.readPump(ctx)
	}()
	go func() {
		errCh <- s.writePump(ctx)
	}()

	err := <-errCh
	cancel() // stop the other pump
	<-errCh

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readPump decodes inbound frames and dispatches them. Malformed frames
// are answered with an error frame and skipped; a transport read error
// ends the session.
func (s *Session) readPump(ctx context.Context) error {
	for {
		raw, err := s.conn.ReadFrame(ctx)
		if err != nil {
			return err
		}

		intent, err := DecodeFrame(raw)
		if err != nil {
			s.log.Warn().Err(err).
				Str("room_id", s.roomID).
				Str("user_id", s.userID).
				Msg("malformed frame skipped")
			if writeErr := s.writeError(ctx, "malformed_frame", "could not decode frame"); writeErr != nil {
				return writeErr
			}
			continue
		}

		switch intent.Kind {
		case IntentChat:
			if err := s.handleChat(ctx, intent); err != nil {
				return err
			}
		case IntentJoin:
			// Presence hook only; membership is implicit in the
			// subscription the session already holds.
			s.log.Info().Str("room_id", s.roomID).Str("user_id", s.userID).Msg("user joined room")
		case IntentLeave:
			s.log.Info().Str("room_id", s.roomID).Str("user_id", s.userID).Msg("user left room")
			return nil
		}
	}
}

// handleChat runs the persist-then-publish path for one message. A
// failed append is reported to this client only and never broadcast.
func (s *Session) handleChat(ctx context.Context, intent Intent) error {
	if intent.Content == "" {
		return s.writeError(ctx, "bad_request", "content is required")
	}

	if _, err := s.sender.SendMessage(ctx, s.roomID, s.userID, intent.Content, intent.MsgKind); err != nil {
		s.log.Error().Err(err).
			Str("room_id", s.roomID).
			Str("user_id", s.userID).
			Msg("failed to send message")
		code, msg := "persistence_failure", "message was not saved"
		var coded interface{ Code() string }
		if errors.As(err, &coded) {
			// Domain errors carry a safe code and message.
			code, msg = coded.Code(), err.Error()
		}
		return s.writeError(ctx, code, msg)
	}
	return nil
}

// writePump forwards topic payloads to the transport in the order they
// arrive from the subscription.
func (s *Session) writePump(ctx context.Context) error {
	for {
		select {
		case payload, ok := <-s.sub.C():
			if !ok {
				return nil
			}
			if err := s.conn.WriteFrame(ctx, payload); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) writeError(ctx context.Context, code, message string) error {
	return s.conn.WriteFrame(ctx, EncodeError(code, message))
}
