// Package catalog synchronizes the local submission cache with the remote
// catalog API: list, register, refresh, delete, and the dataset document
// operations.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// TokenProvider supplies the current access token for authenticated
// requests. The session manager satisfies this; the token is read-only
// from the catalog's side.
type TokenProvider interface {
	AccessToken() string
}

// Client issues requests against the catalog API.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithClientHTTP replaces the default http.Client.
func WithClientHTTP(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a catalog API client rooted at baseURL. tokens may be
// nil for a client that only reaches unauthenticated endpoints.
func NewClient(baseURL string, tokens TokenProvider, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// httpRequest is a single request under construction.
type httpRequest struct {
	method   string
	baseURL  string
	endpoint string
	headers  map[string]string
	json     any
	client   *http.Client
}

func (c *Client) newRequest(method, endpoint string) *httpRequest {
	r := &httpRequest{
		method:   method,
		baseURL:  c.baseURL,
		endpoint: endpoint,
		client:   c.httpClient,
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			r = r.Auth(token)
		}
	}
	return r
}

func (c *Client) Get(endpoint string) *httpRequest {
	return c.newRequest(http.MethodGet, endpoint)
}

func (c *Client) Post(endpoint string) *httpRequest {
	return c.newRequest(http.MethodPost, endpoint)
}

func (c *Client) Put(endpoint string) *httpRequest {
	return c.newRequest(http.MethodPut, endpoint)
}

func (c *Client) Delete(endpoint string) *httpRequest {
	return c.newRequest(http.MethodDelete, endpoint)
}

func (r *httpRequest) Header(key, value string) *httpRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpRequest) Auth(token string) *httpRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %s", token))
}

func (r *httpRequest) Json(data any) *httpRequest {
	r.json = data
	return r
}

// Do sends the request and returns the HTTP status code. A non-2xx status
// is not an error here: callers branch on the code. The returned error is
// non-nil only for transport-level failures, in which case the status is
// zero. On a 2xx response the body is decoded into result when result is
// non-nil.
func (r *httpRequest) Do(ctx context.Context, result any) (int, error) {
	fullEndpoint, err := url.JoinPath(r.baseURL, r.endpoint)
	if err != nil {
		return 0, errors.Wrapf(err, "[Do] formatting url for endpoint %s", r.endpoint)
	}

	var body *bytes.Buffer
	if r.json != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(r.json); err != nil {
			return 0, errors.Wrapf(err, "[Do] encoding json body for endpoint %s", r.endpoint)
		}
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.method, fullEndpoint, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.method, fullEndpoint, nil)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "[Do] creating %s request for endpoint %s", r.method, r.endpoint)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "[Do] sending %s request to endpoint %s", r.method, r.endpoint)
	}
	defer resp.Body.Close()

	if isOK(resp.StatusCode) && result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return 0, errors.Wrapf(err, "[Do] parsing %s response from endpoint %s", r.method, r.endpoint)
		}
	}
	return resp.StatusCode, nil
}

func isOK(status int) bool {
	return status >= 200 && status <= 299
}
