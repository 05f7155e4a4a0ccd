package relay

import (
	"fmt"
	"testing"
	"time"
)

func recvPayload(t *testing.T, sub *Subscription) []byte {
	t.Helper()
	select {
	case p, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
	}
	return nil
}

func TestTopicFanOutPreservesPublishOrder(t *testing.T) {
	topic := newTopic(16)

	a := topic.Subscribe()
	b := topic.Subscribe()
	defer a.Close()
	defer b.Close()

	for i := 0; i < 10; i++ {
		topic.Publish([]byte(fmt.Sprintf("msg-%d", i)))
	}

	for _, sub := range []*Subscription{a, b} {
		for i := 0; i < 10; i++ {
			want := fmt.Sprintf("msg-%d", i)
			if got := string(recvPayload(t, sub)); got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
		}
	}
}

func TestTopicNoReplayBeforeSubscribe(t *testing.T) {
	topic := newTopic(16)

	topic.Publish([]byte("before"))

	sub := topic.Subscribe()
	defer sub.Close()

	topic.Publish([]byte("after"))

	if got := string(recvPayload(t, sub)); got != "after" {
		t.Fatalf("expected only post-subscribe payloads, got %q", got)
	}
	select {
	case p := <-sub.C():
		t.Fatalf("unexpected extra payload %q", p)
	default:
	}
}

func TestTopicSlowConsumerDropsOldest(t *testing.T) {
	topic := newTopic(2)

	slow := topic.Subscribe()
	fast := topic.Subscribe()
	defer slow.Close()
	defer fast.Close()

	// Nobody reads slow; its queue holds 2 and then starts evicting
	// from the front.
	topic.Publish([]byte("m1"))
	topic.Publish([]byte("m2"))
	topic.Publish([]byte("m3"))

	// The fast subscriber sees everything.
	for _, want := range []string{"m1", "m2", "m3"} {
		if got := string(recvPayload(t, fast)); got != want {
			t.Fatalf("fast subscriber expected %q, got %q", want, got)
		}
	}

	// The slow one lost only the oldest item.
	for _, want := range []string{"m2", "m3"} {
		if got := string(recvPayload(t, slow)); got != want {
			t.Fatalf("slow subscriber expected %q, got %q", want, got)
		}
	}
}

func TestTopicPublishDoesNotBlockOnSaturatedSubscriber(t *testing.T) {
	topic := newTopic(1)

	stuck := topic.Subscribe()
	defer stuck.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			topic.Publish([]byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a saturated subscriber")
	}
}

func TestSubscriptionCloseDetachesAndIsIdempotent(t *testing.T) {
	topic := newTopic(4)

	sub := topic.Subscribe()
	if got := topic.Subscribers(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	sub.Close()
	sub.Close()

	if got := topic.Subscribers(); got != 0 {
		t.Fatalf("expected 0 subscribers after close, got %d", got)
	}

	// Publishing after close must not panic.
	topic.Publish([]byte("late"))

	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed receive channel")
	}
}
