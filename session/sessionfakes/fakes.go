// Package sessionfakes provides fake session collaborators for tests.
package sessionfakes

import (
	"sync"

	"github.com/cznethub/go-catalog-client/session"
)

var _ session.WindowOpener = (*FakeWindow)(nil)

// FakeWindow records every URL it is asked to open.
type FakeWindow struct {
	mu     sync.Mutex
	opened []string
	// OpenErr, when set, is returned by Open.
	OpenErr error
}

func NewFakeWindow() *FakeWindow {
	return &FakeWindow{}
}

func (w *FakeWindow) Open(url string) error {
	if w.OpenErr != nil {
		return w.OpenErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opened = append(w.opened, url)
	return nil
}

func (w *FakeWindow) Opened() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.opened))
	copy(out, w.opened)
	return out
}

var _ session.RouteGuard = (*FakeRoutes)(nil)

// FakeRoutes is a route guard with a settable guard flag.
type FakeRoutes struct {
	RequiresAuth bool
	HomePushes   int
}

func (r *FakeRoutes) CurrentRequiresAuth() bool {
	return r.RequiresAuth
}

func (r *FakeRoutes) PushHome() {
	r.HomePushes++
}

var _ session.StateStore = (*FakeStateStore)(nil)

// FakeStateStore is an in-memory StateStore.
type FakeStateStore struct {
	mu    sync.Mutex
	token string
	// LoadErr and SaveErr, when set, are returned by the
	// corresponding call.
	LoadErr error
	SaveErr error
}

func (s *FakeStateStore) SaveToken(token string) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *FakeStateStore) LoadToken() (string, error) {
	if s.LoadErr != nil {
		return "", s.LoadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}
