package relay

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeFrameChatMessage(t *testing.T) {
	raw := []byte(`{"message_type":"chat_message","data":{"content":"hi","room_id":"r1"}}`)

	intent, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if intent.Kind != IntentChat || intent.Content != "hi" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.MsgKind != "text" {
		t.Fatalf("expected default kind text, got %q", intent.MsgKind)
	}
}

func TestDecodeFrameChatMessageExplicitKind(t *testing.T) {
	raw := []byte(`{"message_type":"chat_message","data":{"content":"pic","message_type":"image"}}`)

	intent, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if intent.MsgKind != "image" {
		t.Fatalf("expected kind image, got %q", intent.MsgKind)
	}
}

func TestDecodeFrameJoinAndLeave(t *testing.T) {
	join, err := DecodeFrame([]byte(`{"message_type":"join_room","data":{}}`))
	if err != nil || join.Kind != IntentJoin {
		t.Fatalf("join decode failed: %+v %v", join, err)
	}

	leave, err := DecodeFrame([]byte(`{"message_type":"leave_room","data":{}}`))
	if err != nil || leave.Kind != IntentLeave {
		t.Fatalf("leave decode failed: %+v %v", leave, err)
	}
}

func TestDecodeFrameUnknownType(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"message_type":"presence_ping","data":{}}`))
	if !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("expected ErrUnknownFrame, got %v", err)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	if _, err := DecodeFrame([]byte(`not json at all`)); err == nil {
		t.Fatal("expected error for malformed frame")
	}
	if _, err := DecodeFrame([]byte(`{"message_type":"chat_message","data":"nope"}`)); err == nil {
		t.Fatal("expected error for malformed chat payload")
	}
}

func TestEncodeError(t *testing.T) {
	raw := EncodeError("bad_request", "content is required")

	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.MessageType != FrameError {
		t.Fatalf("unexpected frame type %q", frame.MessageType)
	}

	var payload ErrorPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Code != "bad_request" || payload.Message != "content is required" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
