package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MessageBus is an in-process MessageSource. Producers (an auth-redirect
// handler, tests) publish window messages; each registered listener
// receives every message published while its context is live.
type MessageBus struct {
	mu       sync.RWMutex
	handlers map[string]busEntry
}

type busEntry struct {
	ctx     context.Context
	handler func(LoginMessage)
}

func NewMessageBus() *MessageBus {
	return &MessageBus{handlers: make(map[string]busEntry)}
}

var _ MessageSource = (*MessageBus)(nil)

// Listen registers handler until ctx is cancelled.
func (b *MessageBus) Listen(ctx context.Context, handler func(LoginMessage)) {
	id := uuid.New().String()

	b.mu.Lock()
	b.handlers[id] = busEntry{ctx: ctx, handler: handler}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}()
}

// Publish delivers msg synchronously to every live listener.
func (b *MessageBus) Publish(msg LoginMessage) {
	b.mu.RLock()
	entries := make([]busEntry, 0, len(b.handlers))
	for _, e := range b.handlers {
		entries = append(entries, e)
	}
	b.mu.RUnlock()

	for _, e := range entries {
		if e.ctx.Err() != nil {
			continue
		}
		e.handler(msg)
	}
}
