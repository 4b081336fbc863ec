package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/workhive/desk/domain"
	"github.com/workhive/desk/internal/eventbus"
)

const headerToken = "token"

// TokenSource supplies the current credential token, or "" when the
// session is anonymous.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client wraps outbound requests to the account API with the base
// address, a fixed timeout, the stored credential token header, and
// centralized error surfacing. It owns no navigation: a 401 only
// publishes an auth-expired event on the bus.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	tokens  TokenSource
	bus     *eventbus.Bus
	logger  *zap.Logger
}

// Option customizes the Client.
type Option func(*Client)

// WithTransport overrides the underlying fasthttp client. Tests use it
// to dial an in-memory listener.
func WithTransport(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a Client against the given base address.
func New(baseURL string, timeout time.Duration, tokens TokenSource, bus *eventbus.Bus, logger *zap.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    &fasthttp.Client{},
		tokens:  tokens,
		bus:     bus,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one request. A non-nil body is sent as JSON; on a 2xx
// response the envelope's data is decoded into out (when non-nil) and
// the envelope's meta is returned. Failure semantics: the rejection
// propagates to the caller after side effects (notification, auth
// expiry event); no retry is performed.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) (*Meta, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set(headerToken, tok)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "failed to encode request", err)
		}
		req.SetBody(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		c.notifyError(domain.ErrConnectivity.Message)
		return nil, domain.WrapError(domain.ErrCodeConnectivity, domain.ErrConnectivity.Message, err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		var env Envelope
		if len(resp.Body()) > 0 {
			if err := json.Unmarshal(resp.Body(), &env); err != nil {
				return nil, domain.WrapError(domain.ErrCodeInternal, "unexpected response from server", err)
			}
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return nil, domain.WrapError(domain.ErrCodeInternal, "unexpected response from server", err)
			}
		}
		return env.Meta, nil
	}

	message := c.extractError(resp.Body())
	c.logger.Warn("request rejected",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
	)

	if status == http.StatusUnauthorized {
		// Global side effect, independent of which call triggered it.
		// The top-level subscriber clears storage and redirects.
		c.bus.PublishAuthExpired()
		c.notifyError(domain.ErrAuthExpired.Message)
		return nil, domain.NewError(domain.ErrCodeAuthExpired, domain.ErrAuthExpired.Message)
	}

	c.notifyError(message)
	return nil, domain.NewError(domain.ErrCodeRejected, message)
}

func (c *Client) extractError(body []byte) string {
	var env Envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err == nil {
			if msg := env.ErrorMessage(); msg != "" {
				return msg
			}
		}
	}
	return "Something went wrong"
}

func (c *Client) notifyError(message string) {
	if c.bus != nil {
		c.bus.Notify(eventbus.LevelError, message)
	}
}

// Ping probes the base address. Any HTTP response counts as reachable;
// only a transport failure does not.
func (c *Client) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + "/")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.http.DoDeadline(req, resp, deadline)
}
