// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package apiclient is the HTTP boundary to the scanning API. Every failure
// leaving this package is an *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNilMeasures         = errors.New("measures cannot be nil")
	ErrAuthAcquirerFailure = errors.New("failed acquiring auth token")
)

var (
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
	errJSONMarshal        = errors.New("failed marshaling JSON request payload")
)

const (
	DefaultAddress = "http://localhost:8080/api/v1"
	DefaultTimeout = 30 * time.Second

	errWrappedFmt = "%w: %s"
	userAgent     = "cloudscan-ui"
	jsonMediaType = "application/json"
)

// ClientConfig contains config data for the client used to make requests to
// the scanning API.
type ClientConfig struct {
	// Address is the API base URL including its version path
	// (i.e. https://api.cloudscan.io/api/v1).
	// (Optional) Defaults to http://localhost:8080/api/v1.
	Address string

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds every request when HTTPClient is not provided.
	// (Optional) Defaults to 30 seconds.
	Timeout time.Duration

	// Session holds the credentials attached to outgoing requests.
	// (Optional) Defaults to an in-memory session.
	Session *session.Store

	// OnSessionExpired is called after a failed token refresh cleared the
	// session, so that the user can be sent back to the login screen.
	// (Optional)
	OnSessionExpired func()

	// Logger to be used by the client.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

// Client is used to make requests to the scanning API.
type Client struct {
	client           *http.Client
	baseURL          string
	session          *session.Store
	onSessionExpired func()
	logger           *zap.Logger
	getLogger        func(context.Context) *zap.Logger
	measures         *Measures

	// refreshLock serializes token refreshes so concurrent 401s trigger a
	// single refresh request.
	refreshLock sync.Mutex
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// accept overrides the JSON Accept header.
	accept string

	// noRefresh marks requests that must not trigger a token refresh on 401.
	noRefresh bool
}

type response struct {
	Body   []byte
	Header http.Header
	Code   int
}

// NewClient creates a new Client that can be used to make requests to the
// scanning API.
func NewClient(config ClientConfig, getLogger func(context.Context) *zap.Logger, measures *Measures) (*Client, error) {
	if measures == nil {
		return nil, ErrNilMeasures
	}
	err := validateConfig(&config)
	if err != nil {
		return nil, err
	}
	if getLogger == nil {
		getLogger = sallust.Get
	}

	return &Client{
		client:           config.HTTPClient,
		baseURL:          strings.TrimSuffix(config.Address, "/"),
		session:          config.Session,
		onSessionExpired: config.OnSessionExpired,
		logger:           config.Logger,
		getLogger:        getLogger,
		measures:         measures,
	}, nil
}

// Session returns the credentials store used by the client.
func (c *Client) Session() *session.Store {
	return c.session
}

func (c *Client) log(ctx context.Context) *zap.Logger {
	l := c.getLogger(ctx)
	if l == nil {
		l = c.logger
	}
	return l
}

// do sends the request and decodes a successful JSON response into Resp.
func do[Resp any](ctx context.Context, c *Client, req request) (Resp, error) {
	var out Resp
	resp, err := c.execute(ctx, req)
	if err != nil {
		return out, err
	}
	if resp.Code < 200 || resp.Code > 299 {
		return out, c.statusError(ctx, req, resp)
	}
	if resp.Code == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, &APIError{
			Message:    defaultErrorMessage,
			StatusCode: resp.Code,
			Err:        fmt.Errorf(errWrappedFmt, errJSONUnmarshal, err.Error()),
		}
	}
	return out, nil
}

// send is do for requests whose response body is not needed.
func (c *Client) send(ctx context.Context, req request) error {
	_, err := do[json.RawMessage](ctx, c, req)
	return err
}

// execute sends the request, refreshing the access token and retrying once if
// the API rejects the current one.
func (c *Client) execute(ctx context.Context, req request) (response, error) {
	var body []byte
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return response{}, &APIError{Message: defaultErrorMessage, Err: fmt.Errorf(errWrappedFmt, errJSONMarshal, err.Error())}
		}
		body = data
	}

	refreshed := false
	if !req.noRefresh && c.session.Expired() {
		if err := c.refresh(ctx, c.session.AccessToken()); err != nil {
			return response{}, err
		}
		refreshed = true
	}

	token := c.session.AccessToken()
	resp, err := c.sendRequest(ctx, req, body)
	if err != nil {
		return resp, err
	}
	if resp.Code != http.StatusUnauthorized || req.noRefresh || refreshed {
		return resp, nil
	}

	if err := c.refresh(ctx, token); err != nil {
		return response{}, err
	}
	return c.sendRequest(ctx, req, body)
}

func (c *Client) sendRequest(ctx context.Context, req request, body []byte) (response, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(ctx, req.method, u, reader)
	if err != nil {
		return response{}, &APIError{Message: defaultErrorMessage, Err: fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())}
	}
	err = acquire.AddAuth(r, c.session)
	if err != nil {
		return response{}, &APIError{Message: defaultErrorMessage, Err: fmt.Errorf(errWrappedFmt, ErrAuthAcquirerFailure, err.Error())}
	}
	if body != nil {
		r.Header.Set("Content-Type", jsonMediaType)
	}
	accept := req.accept
	if accept == "" {
		accept = jsonMediaType
	}
	r.Header.Set("Accept", accept)
	r.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(r)
	if err != nil {
		c.measure(req.method, FailureOutcome)
		c.log(ctx).Error("failed to send request to the API",
			zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return response{}, newTransportError(err)
	}
	defer resp.Body.Close()

	outcome := SuccessOutcome
	if resp.StatusCode >= http.StatusBadRequest {
		outcome = FailureOutcome
	}
	c.measure(req.method, outcome)

	apiResp := response{
		Code:   resp.StatusCode,
		Header: resp.Header,
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResp, &APIError{
			Message:    defaultErrorMessage,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error()),
		}
	}
	apiResp.Body = bodyBytes
	return apiResp, nil
}

// refresh exchanges the refresh token for a new access token. stale is the
// access token the caller saw rejected; when another goroutine already
// replaced it there is nothing to do.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()

	if current := c.session.AccessToken(); current != "" && current != stale {
		return nil
	}

	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return c.expireSession(ctx, errors.New("no refresh token available"))
	}

	auth, err := do[model.AuthResponse](ctx, c, request{
		method:    http.MethodPost,
		path:      "/auth/refresh",
		body:      model.RefreshTokenRequest{RefreshToken: refreshToken},
		noRefresh: true,
	})
	if err == nil {
		err = c.session.Set(auth)
	}
	if err != nil {
		c.measures.Refreshes.With(prometheus.Labels{OutcomeLabel: FailureOutcome}).Inc()
		return c.expireSession(ctx, err)
	}

	c.measures.Refreshes.With(prometheus.Labels{OutcomeLabel: SuccessOutcome}).Inc()
	c.log(ctx).Debug("refreshed access token")
	return nil
}

func (c *Client) expireSession(ctx context.Context, cause error) error {
	l := c.log(ctx)
	l.Warn("session expired, clearing credentials", zap.Error(cause))
	if err := c.session.Clear(); err != nil {
		l.Error("failed to clear session", zap.Error(err))
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return &APIError{
		Message:    "Your session has expired. Please sign in again.",
		StatusCode: http.StatusUnauthorized,
		Err:        ErrSessionExpired,
	}
}

func (c *Client) statusError(ctx context.Context, req request, resp response) error {
	apiErr := newStatusError(resp)
	l := c.log(ctx)
	if resp.Code == http.StatusTooManyRequests {
		l.Warn("rate limit exceeded, please try again later",
			zap.String("method", req.method), zap.String("path", req.path))
		return apiErr
	}
	l.Error("API responded with a non-success status code",
		zap.String("method", req.method), zap.String("path", req.path),
		zap.Int("code", resp.Code), zap.String("message", apiErr.Message))
	return apiErr
}

func (c *Client) measure(method, outcome string) {
	c.measures.Requests.With(prometheus.Labels{
		MethodLabel:  method,
		OutcomeLabel: outcome,
	}).Inc()
}

func validateConfig(config *ClientConfig) error {
	if config.Address == "" {
		config.Address = DefaultAddress
	}
	if _, err := url.ParseRequestURI(config.Address); err != nil {
		return fmt.Errorf("invalid API address %q: %w", config.Address, err)
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	if config.Logger == nil {
		config.Logger = sallust.Default()
	}

	if config.Session == nil {
		s, err := session.NewStore(nil, config.Logger)
		if err != nil {
			return err
		}
		config.Session = s
	}
	return nil
}
