package events

import (
	"sync"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// Change is a committed write to one project document. Project is nil when
// the document was removed.
type Change struct {
	Key       domain.ProjectKey
	Revision  int64
	Project   *domain.Project
	Timestamp time.Time
}

// Removed reports whether the change deleted the document.
func (c Change) Removed() bool { return c.Project == nil }

type subscription struct {
	ch   chan Change
	once sync.Once
}

// Bus fans changes out to subscribers by topic (the document path).
// Delivery never blocks the publisher: each subscriber holds at most one
// pending change and a newer change replaces an unread older one, so a slow
// reader always ends up with the latest snapshot.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscription
	closed      bool
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]*subscription)}
}

// Subscribe registers interest in topic. The returned channel is closed by
// the unsubscribe func or by Close.
func (b *Bus) Subscribe(topic string) (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{ch: make(chan Change, 1)}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)

	return sub.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subscribers[topic]
		for i, s := range subs {
			if s == sub {
				b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subscribers[topic]) == 0 {
			delete(b.subscribers, topic)
		}
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Publish delivers c to every subscriber of topic.
func (b *Bus) Publish(topic string, c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	for _, sub := range b.subscribers[topic] {
		select {
		case sub.ch <- c:
			continue
		default:
		}
		// Replace the stale pending change.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Close closes all subscriber channels and rejects new subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for topic, subs := range b.subscribers {
		for _, sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(b.subscribers, topic)
	}
}
