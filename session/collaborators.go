package session

import "context"

// WindowOpener opens the identity provider's authorize URL in a separate
// window (a browser popup, or the system browser for a terminal client).
type WindowOpener interface {
	Open(url string) error
}

// LoginMessage is a window message that may carry a login result. Not
// every window message is a login attempt: messages whose Origin is not
// the application's own, or that carry no AccessToken field at all, are
// ignored without error.
type LoginMessage struct {
	Origin string
	// AccessToken is nil when the message payload has no accessToken
	// field. A non-nil pointer to an empty string is a failed login.
	AccessToken *string
}

// MessageSource delivers window messages to a registered handler until the
// context is cancelled. Cancelling is how a login attempt is superseded;
// there is no timeout, a user may take arbitrarily long in the popup.
type MessageSource interface {
	Listen(ctx context.Context, handler func(LoginMessage))
}

// RouteGuard is the routing collaborator consulted on logout.
type RouteGuard interface {
	// CurrentRequiresAuth reports whether the active UI route is behind
	// a logged-in guard.
	CurrentRequiresAuth() bool
	// PushHome navigates to the home route.
	PushHome()
}
