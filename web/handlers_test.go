package web

import (
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/workhive/desk/account"
	apiclient "github.com/workhive/desk/api/client"
	"github.com/workhive/desk/domain"
	"github.com/workhive/desk/internal/credstore"
	"github.com/workhive/desk/internal/eventbus"
	"github.com/workhive/desk/internal/guard"
	"github.com/workhive/desk/internal/notify"
	"github.com/workhive/desk/pkg/httpcontext"
	"github.com/workhive/desk/session"
)

// stubBackend is a programmable account API. When unauthorized is set
// every request answers 401.
type stubBackend struct {
	unauthorized atomic.Bool
}

func (b *stubBackend) handler(ctx *fasthttp.RequestCtx) {
	if b.unauthorized.Load() {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		return
	}
	switch string(ctx.Path()) {
	case "/login/login", "/account/accounts":
		ctx.SetBodyString(`{"data":{"id":"u1","email":"a@b.com","first_name":"Ada","last_name":"Lovelace","is_activated":false},"meta":{"token":"T1"}}`)
	case "/profile/profile":
		ctx.SetBodyString(`{"data":{"id":"u1","email":"a@b.com","first_name":"Ada","last_name":"Lovelace","is_activated":false}}`)
	case "/account/accounts/country_code_and_flag":
		ctx.SetBodyString(`{"data":[{"name":"United States","country_code":"+1"}]}`)
	default:
		ctx.SetBodyString(`{}`)
	}
}

type testApp struct {
	backend *stubBackend
	store   *session.Store
	handler *Handler
	gm      *guard.Middleware
}

func newTestApp(t *testing.T, googleClientID string) *testApp {
	t.Helper()

	backend := &stubBackend{}
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: backend.handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	creds, err := credstore.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { creds.Close() })

	bus := eventbus.New()
	notes := notify.NewCenter()
	require.NoError(t, notes.Attach(bus))

	var store *session.Store
	api := apiclient.New("http://backend", time.Second,
		apiclient.TokenFunc(func() string { return store.Token() }),
		bus, nil,
		apiclient.WithTransport(&fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
		}),
	)
	svc := account.New(api, nil)
	store = session.NewStore(creds, svc, nil)
	require.NoError(t, bus.SubscribeAuthExpired(store.Expire))
	store.Initialize()

	adapter := httpcontext.NewAdapter(time.Second)
	handler := NewHandler(store, svc, bus, notes, nil, adapter, nil, googleClientID)
	gm := guard.NewMiddleware(store, handler.Loading, nil)

	return &testApp{backend: backend, store: store, handler: handler, gm: gm}
}

func getCtx(path string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(path)
	return &ctx
}

func location(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Response.Header.Peek("Location"))
}

func TestLoginFlowAuthenticatesAndRedirects(t *testing.T) {
	app := newTestApp(t, "")

	ctx := formCtx("email=a%40b.com&password=secretPW1")
	app.handler.LoginSubmit(ctx)

	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/dashboard", location(ctx))

	snap := app.store.Snapshot()
	require.True(t, snap.IsAuthenticated())
	assert.Equal(t, "a@b.com", snap.Identity.Email)
	assert.Equal(t, "T1", app.store.Token())
}

func TestLoginValidationFailureRerendersForm(t *testing.T) {
	app := newTestApp(t, "")

	ctx := formCtx("email=not-an-email&password=")
	app.handler.LoginSubmit(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "Enter a valid email address")
	assert.Contains(t, body, "Password is required")
	assert.False(t, app.store.Snapshot().IsAuthenticated())
}

func TestUnauthorizedAnywhereEndsSession(t *testing.T) {
	app := newTestApp(t, "")

	login := formCtx("email=a%40b.com&password=secretPW1")
	app.handler.LoginSubmit(login)
	require.True(t, app.store.Snapshot().IsAuthenticated())

	// Any request answered 401 clears the session via the bus.
	app.backend.unauthorized.Store(true)
	verify := formCtx("")
	app.handler.VerifySubmit(verify)

	assert.Equal(t, fasthttp.StatusFound, verify.Response.StatusCode())
	assert.Equal(t, "/login", location(verify))
	assert.Equal(t, domain.StateAnonymous, app.store.Snapshot().State)

	// The guard now bounces the dashboard.
	dash := getCtx("/dashboard")
	app.gm.Wrap(guard.RequiresAuth, app.handler.Dashboard)(dash)
	assert.Equal(t, fasthttp.StatusFound, dash.Response.StatusCode())
	assert.Equal(t, "/login", location(dash))
}

func TestRegisterFlowMovesToRoleSelection(t *testing.T) {
	app := newTestApp(t, "")

	ctx := formCtx(validRegisterBody)
	app.handler.RegisterSubmit(ctx)

	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/register/role", location(ctx))
	assert.True(t, app.store.Snapshot().IsAuthenticated())
}

func TestDashboardRendersIdentity(t *testing.T) {
	app := newTestApp(t, "")
	login := formCtx("email=a%40b.com&password=secretPW1")
	app.handler.LoginSubmit(login)

	ctx := getCtx("/dashboard")
	app.gm.Wrap(guard.RequiresAuth, app.handler.Dashboard)(ctx)

	body := string(ctx.Response.Body())
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "Pending verification:")
	assert.Contains(t, body, "Sign out")
}

func TestFlashMessagesRenderOnce(t *testing.T) {
	app := newTestApp(t, "")
	login := formCtx("email=a%40b.com&password=secretPW1")
	app.handler.LoginSubmit(login)

	first := getCtx("/dashboard")
	app.handler.Dashboard(first)
	assert.Contains(t, string(first.Response.Body()), "Login successful!")

	second := getCtx("/dashboard")
	app.handler.Dashboard(second)
	assert.NotContains(t, string(second.Response.Body()), "Login successful!")
}

func TestGoogleButtonHiddenWithoutClientID(t *testing.T) {
	app := newTestApp(t, "")
	ctx := getCtx("/login")
	app.handler.LoginPage(ctx)
	assert.NotContains(t, string(ctx.Response.Body()), "g_id_onload")

	withGoogle := newTestApp(t, "client-123.apps.googleusercontent.com")
	ctx = getCtx("/login")
	withGoogle.handler.LoginPage(ctx)
	assert.Contains(t, string(ctx.Response.Body()), "g_id_onload")
	assert.Contains(t, string(ctx.Response.Body()), "client-123.apps.googleusercontent.com")
}

func TestGoogleCallbackRefusedWhenDisabled(t *testing.T) {
	app := newTestApp(t, "")
	ctx := formCtx("credential=whatever")
	app.handler.GoogleCallback(ctx)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestRegisterPageIncludesCountryCodes(t *testing.T) {
	app := newTestApp(t, "")
	ctx := getCtx("/register")
	app.handler.RegisterPage(ctx)
	assert.Contains(t, string(ctx.Response.Body()), "United States")
}

func TestResetPasswordWithoutTokenRedirects(t *testing.T) {
	app := newTestApp(t, "")
	ctx := getCtx("/reset-password/")
	app.handler.ResetPasswordPage(ctx)
	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/forgot-password", location(ctx))
}

func TestResetPasswordSubmit(t *testing.T) {
	app := newTestApp(t, "")
	ctx := formCtx("password=Str0ngpass&confirm_password=Str0ngpass")
	ctx.SetUserValue("token", "RT-1")
	app.handler.ResetPasswordSubmit(ctx)

	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/login", location(ctx))
}

func TestLogoutFromHandler(t *testing.T) {
	app := newTestApp(t, "")
	login := formCtx("email=a%40b.com&password=secretPW1")
	app.handler.LoginSubmit(login)
	require.True(t, app.store.Snapshot().IsAuthenticated())

	ctx := formCtx("")
	app.handler.Logout(ctx)

	assert.Equal(t, "/", location(ctx))
	assert.Equal(t, domain.StateAnonymous, app.store.Snapshot().State)
}
