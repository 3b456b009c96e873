// Package eventbus is a small in-process publish/subscribe hub. Delivery is
// synchronous and in subscription order, so a publisher knows every
// subscriber has reacted by the time Publish returns.
package eventbus

import (
	"context"
	"sync"
)

// Handler reacts to a published event.
type Handler[E any] func(ctx context.Context, event E)

type subscription[E any] struct {
	id      uint64
	handler Handler[E]
}

// Bus fans out events of type E to its subscribers.
type Bus[E any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription[E]
}

// New creates an empty bus.
func New[E any]() *Bus[E] {
	return &Bus[E]{}
}

// Subscribe registers h and returns a function that removes it again.
func (b *Bus[E]) Subscribe(h Handler[E]) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[E]{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers event to every subscriber. Handlers run outside the bus
// lock, so they may publish or subscribe themselves.
func (b *Bus[E]) Publish(ctx context.Context, event E) {
	b.mu.RLock()
	subs := make([]subscription[E], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(ctx, event)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus[E]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
