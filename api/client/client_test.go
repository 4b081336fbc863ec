package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/workhive/desk/domain"
	"github.com/workhive/desk/internal/eventbus"
)

func stubTransport(t *testing.T, handler fasthttp.RequestHandler) *fasthttp.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })
	return &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}
}

func newTestClient(t *testing.T, handler fasthttp.RequestHandler, token string) (*Client, *eventbus.Bus) {
	t.Helper()
	bus := eventbus.New()
	c := New("http://backend", time.Second,
		TokenFunc(func() string { return token }),
		bus, nil,
		WithTransport(stubTransport(t, handler)),
	)
	return c, bus
}

func TestAttachesTokenHeader(t *testing.T) {
	var seen string
	c, _ := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		seen = string(ctx.Request.Header.Peek("token"))
		ctx.SetBodyString(`{"data":{}}`)
	}, "T1")

	_, err := c.Do(context.Background(), "GET", "/profile/profile", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "T1", seen)
}

func TestOmitsTokenHeaderWhenAnonymous(t *testing.T) {
	var present bool
	c, _ := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		present = len(ctx.Request.Header.Peek("token")) > 0
		ctx.SetBodyString(`{"data":{}}`)
	}, "")

	_, err := c.Do(context.Background(), "POST", "/login/login", map[string]string{}, nil)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestSuccessDecodesDataAndMeta(t *testing.T) {
	c, _ := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"data":{"id":"u1","email":"a@b.com"},"meta":{"token":"T9"}}`)
	}, "")

	var identity domain.Identity
	meta, err := c.Do(context.Background(), "GET", "/profile/profile", nil, &identity)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "T9", meta.Token)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "a@b.com", identity.Email)
}

func TestRejectedUsesEnvelopeDetail(t *testing.T) {
	c, bus := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
		ctx.SetBodyString(`{"errors":[{"detail":"Email already taken"}]}`)
	}, "")

	var notified eventbus.Notification
	require.NoError(t, bus.SubscribeNotify(func(n eventbus.Notification) { notified = n }))

	_, err := c.Do(context.Background(), "POST", "/account/accounts", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeRejected))
	assert.Equal(t, "Email already taken", domain.UserMessage(err))
	assert.Equal(t, eventbus.LevelError, notified.Level)
	assert.Equal(t, "Email already taken", notified.Message)
}

func TestRejectedFallsBackToMessageThenGeneric(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top-level message", `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"empty envelope", `{}`, "Something went wrong"},
		{"not json", `boom`, "Something went wrong"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
				ctx.SetStatusCode(fasthttp.StatusBadRequest)
				ctx.SetBodyString(tc.body)
			}, "")

			_, err := c.Do(context.Background(), "POST", "/login/login", map[string]string{}, nil)
			require.Error(t, err)
			assert.Equal(t, tc.want, domain.UserMessage(err))
		})
	}
}

func TestUnauthorizedPublishesAuthExpired(t *testing.T) {
	c, bus := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	}, "stale")

	var expired bool
	require.NoError(t, bus.SubscribeAuthExpired(func() { expired = true }))

	_, err := c.Do(context.Background(), "GET", "/profile/profile", nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeAuthExpired))
	assert.True(t, expired)
}

func TestConnectivityFailureIsGeneric(t *testing.T) {
	bus := eventbus.New()
	c := New("http://backend", 200*time.Millisecond,
		TokenFunc(func() string { return "" }),
		bus, nil,
		WithTransport(&fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) {
				return nil, errors.New("connection refused")
			},
		}),
	)

	_, err := c.Do(context.Background(), "GET", "/profile/profile", nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConnectivity))
	assert.Equal(t, domain.ErrConnectivity.Message, domain.UserMessage(err))
}
