// Package notifications delivers user-facing toast notifications to
// subscribed UI collaborators.
package notifications

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Kind classifies a notification for rendering purposes.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a single user-visible message.
type Notification struct {
	ID      string
	Message string
	Kind    Kind
}

// Notifier is the write side of the notification channel. Core operations
// call Toast; they never block on, or fail because of, delivery.
type Notifier interface {
	Toast(message string, kind Kind)
}

// Registry is a Notifier that fans notifications out to subscribers.
// Subscribers are UI collaborators; unsubscribing releases the handler so
// unmounted components do not leak.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]func(Notification)
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]func(Notification))}
}

// Subscribe registers a handler and returns an unsubscribe function.
// Unsubscribing more than once is harmless.
func (r *Registry) Subscribe(handler func(Notification)) func() {
	id := uuid.New().String()
	r.mu.Lock()
	r.handlers[id] = handler
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.handlers, id)
		r.mu.Unlock()
	}
}

// Toast delivers a notification to every current subscriber.
func (r *Registry) Toast(message string, kind Kind) {
	n := Notification{
		ID:      uuid.New().String(),
		Message: message,
		Kind:    kind,
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, handler := range r.handlers {
		handler(n)
	}
}

var _ Notifier = (*Registry)(nil)

// LogNotifier writes notifications to the structured log. Useful for
// headless consumers such as the command-line client.
type LogNotifier struct{}

func (LogNotifier) Toast(message string, kind Kind) {
	switch kind {
	case KindError:
		log.Error().Str("kind", string(kind)).Msg(message)
	default:
		log.Info().Str("kind", string(kind)).Msg(message)
	}
}

var _ Notifier = LogNotifier{}
