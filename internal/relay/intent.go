package relay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame is the envelope clients send over the live transport.
type Frame struct {
	MessageType string          `json:"message_type"`
	Data        json.RawMessage `json:"data"`
}

// Recognized inbound frame types.
const (
	FrameChatMessage = "chat_message"
	FrameJoinRoom    = "join_room"
	FrameLeaveRoom   = "leave_room"

	// FrameError is the outbound envelope type for per-client errors.
	FrameError = "error"
)

// ChatPayload is the data of a chat_message frame.
type ChatPayload struct {
	RoomID      string `json:"room_id,omitempty"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// ErrorPayload is the data of an outbound error frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IntentKind enumerates what a decoded frame asks the session to do.
type IntentKind int

const (
	// IntentChat asks to persist and fan out a chat message.
	IntentChat IntentKind = iota
	// IntentJoin is an informational join notice. It is an extension
	// point for presence and currently has no effect beyond logging.
	IntentJoin
	// IntentLeave ends the session at the client's request.
	IntentLeave
)

// Intent is a typed, validated client request.
type Intent struct {
	Kind    IntentKind
	Content string
	// MsgKind is the message kind tag, defaulted to "text".
	MsgKind string
}

// ErrUnknownFrame marks a frame whose message_type is not recognized.
var ErrUnknownFrame = errors.New("unknown frame type")

// DecodeFrame turns a raw inbound frame into an intent. Malformed and
// unknown frames return an error; the session logs and skips them
// rather than tearing down.
func DecodeFrame(raw []byte) (Intent, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Intent{}, fmt.Errorf("decode frame: %w", err)
	}

	switch frame.MessageType {
	case FrameChatMessage:
		var payload ChatPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return Intent{}, fmt.Errorf("decode chat payload: %w", err)
		}
		kind := payload.MessageType
		if kind == "" {
			kind = "text"
		}
		return Intent{Kind: IntentChat, Content: payload.Content, MsgKind: kind}, nil
	case FrameJoinRoom:
		return Intent{Kind: IntentJoin}, nil
	case FrameLeaveRoom:
		return Intent{Kind: IntentLeave}, nil
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownFrame, frame.MessageType)
	}
}

// EncodeError marshals an error frame for one client. A failure here
// can only come from the payload itself and is treated as empty.
func EncodeError(code, message string) []byte {
	data, err := json.Marshal(ErrorPayload{Code: code, Message: message})
	if err != nil {
		return nil
	}
	raw, err := json.Marshal(Frame{MessageType: FrameError, Data: data})
	if err != nil {
		return nil
	}
	return raw
}
