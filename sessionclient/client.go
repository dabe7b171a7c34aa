// Package sessionclient is an HTTP client for the tenant API that keeps the session cookies and
// transparently rotates them when the access token expires.
package sessionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

var ErrRefreshFailed = errors.New("session refresh failed")

// APIError is a non 2xx response from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client sends requests for one tenant. Concurrent callers that hit an expired access token share a single refresh.
type Client struct {
	baseURL    string
	tenantSlug string
	http       *http.Client

	lock  sync.Mutex // guards group
	group *singleflight.Group
}

type Option func(*Client)

// WithHTTPClient uses hc for transport. A cookie jar is installed if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL, tenantSlug string, options ...Option) (*Client, error) {
	if baseURL == "" || tenantSlug == "" {
		return nil, errors.New("[sessionclient.New] base url and tenant are required")
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tenantSlug: tenantSlug,
		http:       &http.Client{},
		group:      &singleflight.Group{},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "[sessionclient.New] failed to create cookie jar")
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Login signs in and stores the session cookies
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) error {
	return c.Do(ctx, http.MethodPost, "/auth/login", map[string]any{
		"email":      email,
		"password":   password,
		"rememberMe": rememberMe,
	}, nil)
}

// Logout ends the session. The server clears the cookies.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Reset discards any in-flight refresh so that the next 401 starts a fresh one
func (c *Client) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.group = &singleflight.Group{}
}

// Do sends a JSON request to /api/{tenant}{path} and decodes the response into out when out is non nil.
// A 401 from a path outside /auth/ triggers one shared refresh and a single retry. When another caller's
// refresh already replaced the access cookie, the request is retried without refreshing again.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "[sessionclient.Do] failed to encode body")
		}
	}

	target := c.tenantURL(path)
	sent := c.accessToken(target)
	resp, err := c.send(ctx, method, target, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && !isAuthPath(path) {
		drain(resp)
		// a refresh that finished while this request was in flight already replaced the cookie
		if c.accessToken(target) == sent {
			if err := c.refresh(ctx); err != nil {
				return err
			}
		}
		if resp, err = c.send(ctx, method, target, payload); err != nil {
			return err
		}
	}
	return decodeResponse(resp, out)
}

func (c *Client) refresh(ctx context.Context) error {
	c.lock.Lock()
	group := c.group
	c.lock.Unlock()

	_, err, shared := group.Do(refreshKey, func() (any, error) {
		// shared by every waiter, detached from the first caller's cancellation
		resp, err := c.send(context.WithoutCancel(ctx), http.MethodPost, c.tenantURL("/auth/refresh"), nil)
		if err != nil {
			return nil, err
		}
		defer drain(resp)
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Wrapf(ErrRefreshFailed, "status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		log.Debug().Err(err).Bool("shared", shared).Str("tenant", c.tenantSlug).Msg("session refresh failed")
	}
	return err
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "[sessionclient] failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[sessionclient] %s %s", method, target)
	}
	return resp, nil
}

// accessToken is the access cookie the jar would send to target
func (c *Client) accessToken(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == session.AccessCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) tenantURL(path string) string {
	return c.baseURL + "/api/" + url.PathEscape(c.tenantSlug) + path
}

// isAuthPath reports whether path belongs to the auth endpoints, whose 401s are final
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

func decodeResponse(resp *http.Response, out any) error {
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		msg := body.Error
		if msg == "" {
			msg = body.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[sessionclient] failed to decode response")
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
