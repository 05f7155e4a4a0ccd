package relay

import "sync"

// DefaultSubscriberBuffer is the per-subscriber queue depth used when
// no explicit capacity is configured.
const DefaultSubscriberBuffer = 64

// Topic is the in-memory fan-out channel for one room. It has no
// persisted form; a restart loses all topics and subscribers rejoin.
type Topic struct {
	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	capacity int
}

func newTopic(capacity int) *Topic {
	return &Topic{
		subs:     make(map[*Subscription]struct{}),
		capacity: capacity,
	}
}

// Subscribe registers a new consumer. The returned subscription only
// sees payloads published after this call; history is recovered through
// the store, never replayed here.
func (t *Topic) Subscribe() *Subscription {
	s := &Subscription{
		topic: t,
		ch:    make(chan []byte, t.capacity),
	}

	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()

	return s
}

// Publish delivers payload to every current subscriber. A subscriber
// whose queue is full loses its oldest queued payload instead of
// blocking the publisher or its peers.
func (t *Topic) Publish(payload []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for s := range t.subs {
		select {
		case s.ch <- payload:
			continue
		default:
		}
		// Queue full: evict the oldest entry and retry once. The
		// second send can still miss if the consumer drained the
		// queue in between, in which case the payload is dropped
		// for this subscriber only.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- payload:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (t *Topic) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Topic) remove(s *Subscription) {
	t.mu.Lock()
	delete(t.subs, s)
	t.mu.Unlock()
}

// Subscription is one consumer's handle on a topic.
type Subscription struct {
	topic *Topic
	ch    chan []byte
	once  sync.Once
}

// C returns the receive channel. It is closed when the subscription is
// closed; payloads already queued are still readable before that.
func (s *Subscription) C() <-chan []byte { return s.ch }

// Close detaches the subscription from its topic and closes the receive
// channel. Safe to call more than once. The removal happens before the
// close, under the topic lock, so Publish never writes to a closed
// channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.topic.remove(s)
		close(s.ch)
	})
}
