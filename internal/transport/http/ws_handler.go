package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/chat"
	"github.com/konect-chat/konect-server/internal/config"
	"github.com/konect-chat/konect-server/internal/relay"
)

// WSHandler upgrades HTTP connections and bridges them to a
// relay.Session bound to one room.
type WSHandler struct {
	chat *chat.Service
	cfg  *config.Config
	log  *zerolog.Logger
}

// NewWSHandler builds a new websocket handler.
func NewWSHandler(chatService *chat.Service, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{chat: chatService, cfg: cfg, log: logger}
}

// Serve handles GET /ws/:room_id. The room must already exist; rooms
// are created only through the room API, so an unknown ID here is
// rejected rather than implicitly created.
func (h *WSHandler) Serve(c *gin.Context) {
	roomID := c.Param("room_id")
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if _, err := h.chat.GetRoom(c.Request.Context(), roomID); err != nil {
		status, msg := statusForChatError(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to resolve room")
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	// Subscribe after the handshake so a failed upgrade never holds a
	// handle on the topic.
	topic := h.chat.Registry().GetOrCreate(roomID)
	sub := topic.Subscribe()

	session := relay.NewSession(wsConn{conn: conn}, sub, h.chat, roomID, userID, h.log)

	h.log.Info().Str("room_id", roomID).Str("user_id", userID).Msg("ws session started")
	err = session.Run(c.Request.Context())

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("ws session closed with error")
		}
	}

	h.log.Info().Str("room_id", roomID).Str("user_id", userID).Msg("ws session ended")
	conn.Close(status, reason)
}

// wsConn adapts a websocket connection to the relay.Conn transport.
type wsConn struct {
	conn *websocket.Conn
}

// ReadFrame returns the next text frame. Binary frames are ignored, as
// the protocol is JSON over text frames only.
func (w wsConn) ReadFrame(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := w.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		if typ != websocket.MessageText {
			continue
		}
		return data, nil
	}
}

// WriteFrame sends payload as one text frame.
func (w wsConn) WriteFrame(ctx context.Context, payload []byte) error {
	return w.conn.Write(ctx, websocket.MessageText, payload)
}
