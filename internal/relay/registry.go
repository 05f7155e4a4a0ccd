package relay

import "sync"

// Registry maps room IDs to their live broadcast topics. It is created
// once at startup and handed to every component that needs it; topics
// live for the remainder of the process.
type Registry struct {
	mu       sync.RWMutex
	topics   map[string]*Topic
	capacity int
}

// NewRegistry builds an empty registry. capacity is the per-subscriber
// queue depth used for every topic it creates.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = DefaultSubscriberBuffer
	}
	return &Registry{
		topics:   make(map[string]*Topic),
		capacity: capacity,
	}
}

// GetOrCreate returns the topic for roomID, creating and inserting it
// if none exists yet. Concurrent callers racing on an unseen room all
// receive the same instance.
func (r *Registry) GetOrCreate(roomID string) *Topic {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.topics[roomID]; ok {
		return t
	}
	t := newTopic(r.capacity)
	r.topics[roomID] = t
	return t
}

// Lookup returns the topic for roomID without creating one. The publish
// path uses this so that sending to a room nobody is watching stays a
// cheap no-op.
func (r *Registry) Lookup(roomID string) (*Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[roomID]
	return t, ok
}
