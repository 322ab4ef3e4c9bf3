package session

import (
	"sync"

	"github.com/google/uuid"
)

// broadcast is a minimal one-to-many observable. Subscribers get every
// value published after they subscribe; the returned function removes the
// subscription and is safe to call more than once.
type broadcast[T any] struct {
	mu   sync.RWMutex
	subs map[string]func(T)
}

func newBroadcast[T any]() *broadcast[T] {
	return &broadcast[T]{subs: make(map[string]func(T))}
}

func (b *broadcast[T]) subscribe(fn func(T)) func() {
	id := uuid.New().String()
	b.mu.Lock()
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcast[T]) publish(v T) {
	b.mu.RLock()
	subs := make([]func(T), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(v)
	}
}
