package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/store"
)

type fakeConn struct {
	in  chan []byte
	out chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:  make(chan []byte, 16),
		out: make(chan []byte, 16),
	}
}

func (c *fakeConn) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case p, ok := <-c.in:
		if !ok {
			return nil, io.EOF
		}
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) WriteFrame(ctx context.Context, payload []byte) error {
	select {
	case c.out <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) expectFrame(t *testing.T) Frame {
	t.Helper()
	select {
	case raw := <-c.out:
		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("unmarshal outbound frame: %v", err)
		}
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound frame")
	}
	return Frame{}
}

type sentCall struct {
	roomID, authorID, content, kind string
}

type fakeSender struct {
	mu    sync.Mutex
	calls []sentCall
	err   error
}

func (f *fakeSender) SendMessage(_ context.Context, roomID, authorID, content, kind string) (*store.Message, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sentCall{roomID, authorID, content, kind})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &store.Message{ID: "m1", RoomID: roomID, UserID: authorID, Content: content, Kind: kind}, nil
}

func (f *fakeSender) sent() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.calls...)
}

type codedErr struct{ code string }

func (e codedErr) Error() string { return "boom" }
func (e codedErr) Code() string  { return e.code }

func startSession(t *testing.T, conn *fakeConn, sender MessageSender) (*Topic, *Subscription, chan error) {
	t.Helper()

	topic := newTopic(8)
	sub := topic.Subscribe()
	logger := zerolog.Nop()
	session := NewSession(conn, sub, sender, "room-1", "user-1", &logger)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
	}()
	return topic, sub, done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate")
		return nil
	}
}

func TestSessionDispatchesChatToSender(t *testing.T) {
	conn := newFakeConn()
	sender := &fakeSender{}
	_, _, done := startSession(t, conn, sender)

	conn.in <- []byte(`{"message_type":"chat_message","data":{"content":"hello"}}`)
	conn.in <- []byte(`{"message_type":"leave_room","data":{}}`)

	if err := waitDone(t, done); err != nil {
		t.Fatalf("session ended with error: %v", err)
	}

	calls := sender.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(calls))
	}
	want := sentCall{"room-1", "user-1", "hello", "text"}
	if calls[0] != want {
		t.Fatalf("unexpected send call: %+v", calls[0])
	}
}

func TestSessionForwardsTopicPayloadsInOrder(t *testing.T) {
	conn := newFakeConn()
	sender := &fakeSender{}
	topic, _, done := startSession(t, conn, sender)

	topic.Publish([]byte(`{"message_type":"x","data":{"content":"one"}}`))
	topic.Publish([]byte(`{"message_type":"x","data":{"content":"two"}}`))

	for _, want := range []string{"one", "two"} {
		frame := conn.expectFrame(t)
		var payload ChatPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload.Content != want {
			t.Fatalf("expected %q, got %q", want, payload.Content)
		}
	}

	close(conn.in)
	if err := waitDone(t, done); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSessionSendFailureAnswersOnlyThisClient(t *testing.T) {
	conn := newFakeConn()
	sender := &fakeSender{err: codedErr{code: "persistence_failure"}}
	topic, _, done := startSession(t, conn, sender)

	peer := topic.Subscribe()
	defer peer.Close()

	conn.in <- []byte(`{"message_type":"chat_message","data":{"content":"doomed"}}`)

	frame := conn.expectFrame(t)
	if frame.MessageType != FrameError {
		t.Fatalf("expected error frame, got %q", frame.MessageType)
	}
	var payload ErrorPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Code != "persistence_failure" {
		t.Fatalf("unexpected code %q", payload.Code)
	}

	// The failure is invisible to peers.
	select {
	case p := <-peer.C():
		t.Fatalf("peer unexpectedly received %q", p)
	case <-time.After(100 * time.Millisecond):
	}

	close(conn.in)
	waitDone(t, done)
}

func TestSessionMalformedFrameIsSkipped(t *testing.T) {
	conn := newFakeConn()
	sender := &fakeSender{}
	_, _, done := startSession(t, conn, sender)

	conn.in <- []byte(`{{{`)
	frame := conn.expectFrame(t)
	if frame.MessageType != FrameError {
		t.Fatalf("expected error frame, got %q", frame.MessageType)
	}

	// The session is still alive and processes the next frame.
	conn.in <- []byte(`{"message_type":"chat_message","data":{"content":"still here"}}`)
	conn.in <- []byte(`{"message_type":"leave_room","data":{}}`)

	if err := waitDone(t, done); err != nil {
		t.Fatalf("session ended with error: %v", err)
	}
	if calls := sender.sent(); len(calls) != 1 || calls[0].content != "still here" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestSessionReadFailureCancelsWritePump(t *testing.T) {
	conn := newFakeConn()
	sender := &fakeSender{}
	topic, sub, done := startSession(t, conn, sender)

	close(conn.in) // transport read failure

	if err := waitDone(t, done); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}

	// The subscription was released; the topic holds no handle.
	if got := topic.Subscribers(); got != 0 {
		t.Fatalf("expected 0 subscribers after teardown, got %d", got)
	}
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected subscription channel to be closed")
	}
}

func TestSessionLeaveClosesSubscription(t *testing.T) {
	conn := newFakeConn()
	sender := &fakeSender{}
	topic, _, done := startSession(t, conn, sender)

	conn.in <- []byte(`{"message_type":"leave_room","data":{}}`)

	if err := waitDone(t, done); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if got := topic.Subscribers(); got != 0 {
		t.Fatalf("expected 0 subscribers after leave, got %d", got)
	}
}
