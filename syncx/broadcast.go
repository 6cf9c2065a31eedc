// Package syncx holds small generic synchronization helpers shared across
// the runtime and its CLI tooling.
package syncx

import "sync"

// Broadcaster fans a single value out to any number of subscriber
// channels. Used by inspect.Tracer to feed live trace lines to CLI
// followers and introspection clients without coupling the dispatch path
// to how many (if any) subscribers are currently attached.
type Broadcaster[T any] struct {
	mu          sync.Mutex
	subscribers []chan T
}

// NewBroadcaster builds an empty Broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe registers a new receiver and returns its channel.
func (b *Broadcaster[T]) Subscribe() chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 64)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes ch. No-op if ch was already removed.
func (b *Broadcaster[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// TryEmit delivers msg to every subscriber that has room, dropping it for
// subscribers whose buffer is full instead of blocking the caller. This is
// the only emit mode inspect.Tracer uses: a stalled trace follower must
// never be able to stall packet dispatch.
func (b *Broadcaster[T]) TryEmit(msg T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		select {
		case sub <- msg:
		default:
		}
	}
}

// Close closes every current subscriber channel.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}
