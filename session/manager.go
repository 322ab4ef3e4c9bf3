package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cznethub/go-catalog-client/internal/utils"
	"github.com/cznethub/go-catalog-client/notifications"
	"github.com/cznethub/go-catalog-client/querystring"
)

// Endpoints holds the external URLs the session manager talks to.
type Endpoints struct {
	// Authorize is the identity provider's authorize endpoint. See
	// ResolveAuthorizeEndpoint for deriving it from an OIDC issuer.
	Authorize string
	// Search is used by CheckAuthorization as a lightweight
	// authenticated probe.
	Search string

	Schema         string
	UISchema       string
	SchemaDefaults string
}

// Collaborators holds the Manager's external collaborator dependencies.
type Collaborators struct {
	Window   WindowOpener
	Messages MessageSource
	Notifier notifications.Notifier
	Routes   RouteGuard // optional
}

// Manager owns the session state and the login popup protocol. At most one
// login listener is active at any time: starting a new login attempt
// cancels the previous one before arming its own listener.
type Manager struct {
	appURL    string
	clientID  string
	endpoints Endpoints
	collab    Collaborators

	httpClient *http.Client
	store      StateStore
	nowTime    func() time.Time

	mu             sync.Mutex
	state          State
	cancelListener context.CancelFunc

	loginDialog *broadcast[string]
	loggedIn    *broadcast[struct{}]
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// WithStateStore enables persistence of the durable session subset. A
// previously saved token is restored on construction.
func WithStateStore(store StateStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager initializes a session Manager. appURL is the application's
// own origin: it scopes which window messages are trusted and derives the
// OAuth redirect URI.
func NewManager(appURL, clientID string, endpoints Endpoints, collab Collaborators, options ...ManagerOption) (*Manager, error) {
	if appURL == "" {
		return nil, errors.New("[NewManager] appURL is required")
	}
	if endpoints.Authorize == "" {
		return nil, errors.New("[NewManager] authorize endpoint is required")
	}
	if collab.Window == nil {
		return nil, errors.New("[NewManager] Window collaborator is required")
	}
	if collab.Messages == nil {
		return nil, errors.New("[NewManager] Messages collaborator is required")
	}
	if collab.Notifier == nil {
		return nil, errors.New("[NewManager] Notifier collaborator is required")
	}

	m := &Manager{
		appURL:      appURL,
		clientID:    clientID,
		endpoints:   endpoints,
		collab:      collab,
		httpClient:  http.DefaultClient,
		nowTime:     time.Now,
		loginDialog: newBroadcast[string](),
		loggedIn:    newBroadcast[struct{}](),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.store != nil {
		token, err := m.store.LoadToken()
		if err != nil {
			log.Warn().Err(err).Msg("[session] could not restore persisted token")
		} else if token != "" {
			m.state.AccessToken = token
			m.state.IsLoggedIn = true
		}
	}

	return m, nil
}

// OpenLoginDialog records the desired post-login navigation target and
// asks listening UI collaborators to render a login prompt. It does not
// itself start a login.
func (m *Manager) OpenLoginDialog(redirectTo string) {
	m.mu.Lock()
	m.state.PendingRedirect = redirectTo
	m.mu.Unlock()

	m.loginDialog.publish(redirectTo)
}

// LogIn opens the authorize popup and arms the login message listener.
// Any previous attempt's listener is cancelled first, so a message from a
// stale popup can never commit a token or fire its callback. onSuccess may
// be nil.
func (m *Manager) LogIn(onSuccess func()) error {
	params := querystring.Params{}.
		Set("response_type", "token").
		Set("client_id", m.clientID).
		Set("redirect_uri", m.appURL+"/auth-redirect").
		Set("window_close", "True").
		Set("scope", "openid")

	if err := m.collab.Window.Open(m.endpoints.Authorize + "?" + querystring.Encode(params)); err != nil {
		return errors.Wrap(err, "[LogIn] opening authorize window")
	}

	m.mu.Lock()
	if m.cancelListener != nil {
		m.cancelListener()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelListener = cancel
	m.mu.Unlock()

	m.collab.Messages.Listen(ctx, func(msg LoginMessage) {
		m.handleLoginMessage(ctx, cancel, msg, onSuccess)
	})
	log.Info().Msg("[session] listening to login window...")
	return nil
}

// handleLoginMessage applies the listener rules: wrong origin or a payload
// without an accessToken field is silently ignored; an empty token is a
// failed login that keeps the listener armed so the user can retry in the
// same popup; a non-empty token commits the session and releases the
// listener.
func (m *Manager) handleLoginMessage(ctx context.Context, cancel context.CancelFunc, msg LoginMessage, onSuccess func()) {
	if msg.Origin != m.appURL || msg.AccessToken == nil {
		return
	}

	token := utils.Value(msg.AccessToken)
	if token == "" {
		m.collab.Notifier.Toast("Failed to Log In", notifications.KindError)
		return
	}

	m.mu.Lock()
	if ctx.Err() != nil {
		// A newer LogIn superseded this attempt, or it already
		// committed. Either way the message is not ours to act on.
		m.mu.Unlock()
		return
	}
	m.state.AccessToken = token
	m.state.IsLoggedIn = true
	cancel()
	m.cancelListener = nil
	m.mu.Unlock()

	m.persistToken(token)
	m.collab.Notifier.Toast("You have logged in!", notifications.KindSuccess)
	m.loggedIn.publish(struct{}{})
	if onSuccess != nil {
		onSuccess()
	}
}

// CheckAuthorization revalidates the current token against the search
// endpoint. A non-200 response or a failed request clears the logged-in
// flag. This is advisory: the token itself is kept, and only LogOut is the
// source of truth for ending a session.
func (m *Manager) CheckAuthorization(ctx context.Context) {
	token := m.AccessToken()
	if token == "" {
		m.dropLoggedInFlag()
		return
	}
	if tokenExpired(token, m.nowTime()) {
		m.dropLoggedInFlag()
		return
	}

	query := querystring.Encode(querystring.Params{}.Set("access_token", token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoints.Search+"?"+query, nil)
	if err != nil {
		m.dropLoggedInFlag()
		return
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("[session] authorization check failed")
		m.dropLoggedInFlag()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.dropLoggedInFlag()
	}
}

// LogOut clears the session unconditionally. No server round-trip is
// awaited; logout always succeeds locally. If the active UI route requires
// authentication, the routing collaborator is asked to go home.
func (m *Manager) LogOut() {
	m.mu.Lock()
	m.state.AccessToken = ""
	m.state.IsLoggedIn = false
	if m.cancelListener != nil {
		m.cancelListener()
		m.cancelListener = nil
	}
	m.mu.Unlock()

	m.persistToken("")
	m.collab.Notifier.Toast("You have logged out!", notifications.KindInfo)

	if m.collab.Routes != nil && m.collab.Routes.CurrentRequiresAuth() {
		m.collab.Routes.PushHome()
	}
}

// FetchSchemas fetches the submission-form schema documents. The three
// requests run concurrently and each result is committed as it resolves;
// a failed fetch leaves its slot nil without affecting the others.
func (m *Manager) FetchSchemas(ctx context.Context) {
	fetches := []struct {
		url    string
		commit func(st *State, doc json.RawMessage)
	}{
		{m.endpoints.Schema, func(st *State, doc json.RawMessage) { st.Schema = doc }},
		{m.endpoints.UISchema, func(st *State, doc json.RawMessage) { st.UISchema = doc }},
		{m.endpoints.SchemaDefaults, func(st *State, doc json.RawMessage) { st.SchemaDefaults = doc }},
	}

	var wg sync.WaitGroup
	wg.Add(len(fetches))
	for _, f := range fetches {
		go func(url string, commit func(*State, json.RawMessage)) {
			defer wg.Done()
			doc, err := m.fetchJSON(ctx, url)
			if err != nil {
				log.Debug().Err(err).Str("url", url).Msg("[session] schema fetch failed")
				return
			}
			m.mu.Lock()
			commit(&m.state, doc)
			m.mu.Unlock()
		}(f.url, f.commit)
	}
	wg.Wait()
}

func (m *Manager) fetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[fetchJSON] building request")
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[fetchJSON] request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("[fetchJSON] %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[fetchJSON] reading body")
	}
	if !json.Valid(body) {
		return nil, errors.Errorf("[fetchJSON] %s returned invalid JSON", url)
	}
	return json.RawMessage(body), nil
}

// AccessToken returns the current token, empty when unauthenticated.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AccessToken
}

// IsLoggedIn reports whether the session holds a committed token.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsLoggedIn
}

// Snapshot returns a copy of the full session state for UI reads.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnLoginDialog subscribes to login-dialog requests. The payload is the
// post-login redirect target. Returns an unsubscribe function.
func (m *Manager) OnLoginDialog(fn func(redirectTo string)) func() {
	return m.loginDialog.subscribe(fn)
}

// OnLoggedIn subscribes to successful-login events. Returns an
// unsubscribe function.
func (m *Manager) OnLoggedIn(fn func()) func() {
	return m.loggedIn.subscribe(func(struct{}) { fn() })
}

func (m *Manager) dropLoggedInFlag() {
	m.mu.Lock()
	m.state.IsLoggedIn = false
	m.mu.Unlock()
}

func (m *Manager) persistToken(token string) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveToken(token); err != nil {
		log.Warn().Err(err).Msg("[session] could not persist token")
	}
}
