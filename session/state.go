// Package session owns the authentication token and the login lifecycle:
// the popup authorize flow, logout, advisory token revalidation, and the
// token-gated prefetch of the submission form schemas.
package session

import "encoding/json"

// State is the session's observable state. There is one State per Manager
// and it is mutated only through the Manager's commit path.
type State struct {
	// AccessToken is empty when unauthenticated.
	AccessToken string
	// IsLoggedIn always agrees with AccessToken being non-empty. Kept as
	// its own field for cheap reads by UI collaborators.
	IsLoggedIn bool
	// PendingRedirect is the route to resume after a successful login.
	PendingRedirect string

	// Cached submission-form schemas, fetched once per authenticated
	// session. Any subset may be nil; partial availability is terminal.
	Schema         json.RawMessage
	UISchema       json.RawMessage
	SchemaDefaults json.RawMessage
}

// StateStore persists the durable subset of session state across runs.
// Only the access token survives a restart; everything else is rebuilt.
type StateStore interface {
	SaveToken(token string) error
	LoadToken() (string, error)
}
