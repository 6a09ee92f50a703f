package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"telecare/internal/errors"
)

const defaultRequestTimeout = 15 * time.Second

// HTTPClient implements AuthAPI and ProfileAPI against the reference REST
// backend. It holds the current session and emits auth events on every
// transition.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	events  *broadcaster

	mu      sync.RWMutex
	session *Session
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = logger }
}

// NewHTTPClient builds a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}

	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
		logger:  slog.Default(),
		events:  newBroadcaster(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RestoreSession seeds the client with a previously persisted session, as if
// the user had just signed in. Used by the CLI to survive restarts.
func (c *HTTPClient) RestoreSession(sess *Session) {
	if sess == nil {
		return
	}
	c.setSession(sess)
	c.events.emit(AuthEvent{Type: EventSignedIn, Session: sess})
}

func (c *HTTPClient) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

func (c *HTTPClient) setSession(sess *Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
}

// takeSession clears the held session and returns what was there.
func (c *HTTPClient) takeSession() *Session {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()
	return sess
}

func (c *HTTPClient) Subscribe(fn func(AuthEvent)) func() {
	return c.events.subscribe(fn)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	var result SignUpResult
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", signUpRequest{Email: email, Password: password}, &result, "")
	if err != nil {
		return nil, err
	}

	if result.Session != nil {
		c.setSession(result.Session)
		c.events.emit(AuthEvent{Type: EventSignedIn, Session: result.Session})
	}

	return &result, nil
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token", tokenRequest{Email: email, Password: password}, &sess, "")
	if err != nil {
		return nil, err
	}

	c.setSession(&sess)
	c.events.emit(AuthEvent{Type: EventSignedIn, Session: &sess})

	return &sess, nil
}

// SignOut drops the local session first, then revokes the refresh token on
// the backend. The local state is gone even when revocation fails.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	sess := c.takeSession()
	if sess == nil {
		return nil
	}

	c.events.emit(AuthEvent{Type: EventSignedOut})

	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", logoutRequest{RefreshToken: sess.RefreshToken}, nil, sess.AccessToken)
	if err != nil {
		return errors.Wrap(err, "revoke session")
	}

	return nil
}

func (c *HTTPClient) RefreshSession(ctx context.Context) (*Session, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	var refreshed Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token/refresh", refreshRequest{RefreshToken: sess.RefreshToken}, &refreshed, "")
	if err != nil {
		return nil, err
	}

	c.setSession(&refreshed)
	c.events.emit(AuthEvent{Type: EventTokenRefreshed, Session: &refreshed})

	return &refreshed, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	if err := c.do(ctx, http.MethodDelete, "/auth/v1/user", nil, nil, sess.AccessToken); err != nil {
		return err
	}

	c.takeSession()
	c.events.emit(AuthEvent{Type: EventSignedOut})

	return nil
}

func (c *HTTPClient) SelectProfile(ctx context.Context) (*Profile, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/rest/v1/profiles", nil, &profile, sess.AccessToken); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (c *HTTPClient) InsertProfile(ctx context.Context, attrs ProfileAttributes) (*Profile, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/rest/v1/profiles", attrs, &profile, sess.AccessToken); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, changes ProfileChanges) (*Profile, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	var profile Profile
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/profiles", changes, &profile, sess.AccessToken); err != nil {
		return nil, err
	}

	return &profile, nil
}

// envelope mirrors the backend's unified response structure.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error,omitempty"`
}

// do sends one JSON request and decodes the envelope's data into out. An
// empty bearer means the endpoint is unauthenticated.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, bearer string) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = new(bytes.Buffer)
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return errors.Wrap(err, "encode request body")
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrapf(err, "decode response (%s %s, status %d)", method, path, resp.StatusCode)
	}

	if !env.Success {
		code, details := "", ""
		if env.Error != nil {
			code, details = env.Error.Code, env.Error.Details
		}
		c.logger.Debug("backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("code", code))
		return mapAPIError(resp.StatusCode, code, env.Message, details)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode response data")
		}
	}

	return nil
}
