package broadcast

import (
	"sync"

	"auction-live/utils"
)

// DefaultBufferSize is the per-subscriber event buffer used when the
// configured size is zero or negative.
const DefaultBufferSize = 64

// Subscriber is one observer's view of the event stream. Events begin at
// the moment of subscription; there is no history replay.
type Subscriber struct {
	id     string
	events chan Event
	once   sync.Once
}

// Events returns the subscriber's event stream. The channel is closed
// when the subscriber is removed, whether by Unsubscribe or by falling
// too far behind.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// ID returns the subscriber's registry identifier.
func (s *Subscriber) ID() string {
	return s.id
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.events) })
}

// Broadcaster fans committed state changes out to all subscribers. The
// registry is internally synchronized; callers never see or share it.
// Publish never blocks: a subscriber whose buffer is full is dropped so
// one slow observer cannot stall the auction engine.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]*Subscriber
	buffer int
}

// NewBroadcaster creates a Broadcaster with the given per-subscriber
// buffer size.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Broadcaster{
		subs:   make(map[string]*Subscriber),
		buffer: buffer,
	}
}

// Subscribe registers a new observer and returns its stream.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{
		id:     utils.GenerateID(),
		events: make(chan Event, b.buffer),
	}
	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	utils.Info("broadcast: subscriber joined", map[string]any{"subscriber_id": sub.id})
	return sub
}

// Unsubscribe removes an observer and closes its stream. Safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	_, present := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	sub.close()
	if present {
		utils.Info("broadcast: subscriber left", map[string]any{"subscriber_id": sub.id})
	}
}

// Publish delivers an event to every current subscriber without
// blocking. Subscribers with a full buffer are dropped. Delivery happens
// in one pass under the registry lock, so events published in order are
// enqueued to every subscriber in that same order.
func (b *Broadcaster) Publish(event Event) {
	var dropped []*Subscriber

	b.mu.Lock()
	for id, sub := range b.subs {
		select {
		case sub.events <- event:
		default:
			delete(b.subs, id)
			dropped = append(dropped, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range dropped {
		sub.close()
		utils.Warn("broadcast: dropped slow subscriber", map[string]any{
			"subscriber_id": sub.id,
			"event_type":    string(event.Type),
		})
	}
}

// SubscriberCount returns the number of currently registered observers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close removes and closes every subscriber, for shutdown.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := make([]*Subscriber, 0, len(b.subs))
	for id, sub := range b.subs {
		subs = append(subs, sub)
		delete(b.subs, id)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
