// AngelaMos | 2026
// client.go

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

const (
	defaultTimeout = 30 * time.Second

	refreshPath = "/api/auth/refresh"
)

// ErrSessionExpired is returned when a request was rejected with 401 and the
// refresh token could not be exchanged for a new session.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx response that carried the JSON error envelope.
type APIError struct {
	StatusCode int
	Status     string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// StatusCode reports the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Message string     `json:"message"`
	Meta    *core.Meta `json:"meta"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the invoice API. Session tokens live in the cookie jar,
// the same way a browser holds them.
type Client struct {
	http      *resty.Client
	refreshMu sync.Mutex
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetCookieJar(jar).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{http: rc}, nil
}

type request struct {
	method string
	path   string
	body   any
	query  map[string]string
	// public marks endpoints that do not need a session (login, logout).
	// A 401 from them is final.
	public bool
}

// call sends req and decodes the envelope's data into out. A 401 from an
// endpoint that needs a session triggers one refresh and one retry.
func (c *Client) call(ctx context.Context, req request, out any) (*core.Meta, error) {
	env, resp, err := c.send(ctx, req, out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized && !req.public {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		env, resp, err = c.send(ctx, req, out)
		if err != nil {
			return nil, err
		}
	}

	if resp.IsError() {
		return nil, toAPIError(resp)
	}

	return env.Meta, nil
}

func (c *Client) send(
	ctx context.Context,
	req request,
	out any,
) (*envelope, *resty.Response, error) {
	env := &envelope{Data: out}

	r := c.http.R().
		SetContext(ctx).
		SetResult(env).
		SetError(&errorEnvelope{})
	if req.body != nil {
		r.SetBody(req.body)
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}

	resp, err := r.Execute(req.method, req.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}

	return env, resp, nil
}

// download fetches a binary body, with the same refresh-and-retry rule as
// call.
func (c *Client) download(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	get := func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetError(&errorEnvelope{}).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}
		return resp, nil
	}

	resp, err := get()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		if resp, err = get(); err != nil {
			return nil, err
		}
	}

	if resp.IsError() {
		return nil, toAPIError(resp)
	}

	return resp.Body(), nil
}

func (c *Client) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&errorEnvelope{}).
		Post(refreshPath)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	if resp.IsError() {
		slog.DebugContext(ctx, "session refresh rejected",
			"status", resp.StatusCode(),
		)
		return ErrSessionExpired
	}

	return nil
}

func toAPIError(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     http.StatusText(resp.StatusCode()),
	}
	if body, ok := resp.Error().(*errorEnvelope); ok && body != nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		if body.Error != "" {
			apiErr.Status = body.Error
		}
	}
	return apiErr
}
