package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/workhive/desk/domain"
)

type staticSession domain.Session

func (s staticSession) Snapshot() domain.Session { return domain.Session(s) }

func TestMiddlewareRedirectsAnonymous(t *testing.T) {
	m := NewMiddleware(staticSession{State: domain.StateAnonymous}, nil, nil)

	var served bool
	h := m.Wrap(RequiresAuth, func(ctx *fasthttp.RequestCtx) { served = true })

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/dashboard")
	h(&ctx)

	assert.False(t, served)
	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, LoginPath, string(ctx.Response.Header.Peek("Location")))
}

func TestMiddlewarePassesThrough(t *testing.T) {
	m := NewMiddleware(staticSession{
		State:    domain.StateAuthenticated,
		Identity: &domain.Identity{ID: "u1"},
	}, nil, nil)

	var served bool
	h := m.Wrap(RequiresAuth, func(ctx *fasthttp.RequestCtx) { served = true })

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/dashboard")
	h(&ctx)

	assert.True(t, served)
}

func TestMiddlewareRendersLoading(t *testing.T) {
	var loading bool
	m := NewMiddleware(staticSession{State: domain.StateInitializing},
		func(ctx *fasthttp.RequestCtx) { loading = true }, nil)

	h := m.Wrap(Public, func(ctx *fasthttp.RequestCtx) { t.Fatal("must not render") })

	var ctx fasthttp.RequestCtx
	h(&ctx)

	assert.True(t, loading)
}
