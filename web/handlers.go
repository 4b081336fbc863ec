package web

import (
	"html/template"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/workhive/desk/account"
	"github.com/workhive/desk/domain"
	"github.com/workhive/desk/internal/eventbus"
	"github.com/workhive/desk/internal/infrastructure/monitor"
	"github.com/workhive/desk/internal/notify"
	"github.com/workhive/desk/pkg/httpcontext"
	"github.com/workhive/desk/session"
)

// Handler renders the pages and drives Session Store operations from
// form submissions. It owns no session state of its own.
type Handler struct {
	store    *session.Store
	svc      *account.Service
	bus      *eventbus.Bus
	notes    *notify.Center
	mon      *monitor.Monitor
	adapter  *httpcontext.Adapter
	logger   *zap.Logger
	pages    map[string]*template.Template
	googleID string
}

func NewHandler(
	store *session.Store,
	svc *account.Service,
	bus *eventbus.Bus,
	notes *notify.Center,
	mon *monitor.Monitor,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
	googleClientID string,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:    store,
		svc:      svc,
		bus:      bus,
		notes:    notes,
		mon:      mon,
		adapter:  adapter,
		logger:   logger,
		pages:    parseTemplates(),
		googleID: googleClientID,
	}
}

func (h *Handler) page(title string) pageData {
	online := true
	if h.mon != nil {
		online = h.mon.Online()
	}
	return pageData{
		Title:        title,
		Session:      h.store.Snapshot(),
		Flashes:      h.notes.Drain(),
		Online:       online,
		GoogleClient: h.googleID,
	}
}

// Loading renders the interstitial used by the route guard while the
// session is still initializing.
func (h *Handler) Loading(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "loading", h.page("Loading"))
}

// Home is the public marketing page.
func (h *Handler) Home(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "home", h.page("Freelancing, organized"))
}

// LoginPage renders the sign-in form.
func (h *Handler) LoginPage(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "login", h.page("Sign in"))
}

// LoginSubmit validates and performs the login operation.
func (h *Handler) LoginSubmit(ctx *fasthttp.RequestCtx) {
	form := parseLoginForm(ctx)
	if fe := form.validate(); !fe.ok() {
		data := h.page("Sign in")
		data.Errors = fe
		data.Values = map[string]string{"email": form.Email}
		h.render(ctx, "login", data)
		return
	}

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	if err := h.store.Login(stdCtx, form.Email, form.Password); err != nil {
		h.renderAfterError(ctx, err, "login", "Sign in", map[string]string{"email": form.Email})
		return
	}
	h.bus.Notify(eventbus.LevelSuccess, "Login successful!")
	ctx.Response.Header.Set("Location", "/dashboard")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// RegisterPage renders the account creation form, with the dial-code
// lookup when the backend answers in time.
func (h *Handler) RegisterPage(ctx *fasthttp.RequestCtx) {
	data := h.page("Create your account")

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()
	if codes, err := h.svc.CountryCodes(stdCtx); err == nil {
		data.CountryCodes = codes
	}

	h.render(ctx, "register", data)
}

// RegisterSubmit validates and performs the register operation. The
// confirmation field stops here: only canonical profile fields go out.
func (h *Handler) RegisterSubmit(ctx *fasthttp.RequestCtx) {
	form := parseRegisterForm(ctx)
	values := map[string]string{
		"first_name":        form.FirstName,
		"last_name":         form.LastName,
		"email":             form.Email,
		"full_phone_number": form.FullPhone,
	}
	if fe := form.validate(); !fe.ok() {
		data := h.page("Create your account")
		data.Errors = fe
		data.Values = values
		h.render(ctx, "register", data)
		return
	}

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	in := account.RegisterInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		FullPhone: form.FullPhone,
		Email:     form.Email,
		Password:  form.Password,
	}
	if err := h.store.Register(stdCtx, in); err != nil {
		h.renderAfterError(ctx, err, "register", "Create your account", values)
		return
	}
	h.bus.Notify(eventbus.LevelSuccess, "Registration successful!")
	ctx.Response.Header.Set("Location", "/register/role")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// RolePage renders the role selection step.
func (h *Handler) RolePage(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "role", h.page("Choose your role"))
}

// RoleSubmit persists the chosen role to the profile.
func (h *Handler) RoleSubmit(ctx *fasthttp.RequestCtx) {
	form := parseRoleForm(ctx)
	if fe := form.validate(); !fe.ok() {
		data := h.page("Choose your role")
		data.Errors = fe
		h.render(ctx, "role", data)
		return
	}

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	identity, err := h.svc.UpdateProfile(stdCtx, account.ProfilePatch{Role: domain.Role(form.Role)})
	if err != nil {
		h.renderAfterError(ctx, err, "role", "Choose your role", nil)
		return
	}
	h.store.UpdateIdentity(identity)
	ctx.Response.Header.Set("Location", "/register/verify")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// VerifyPage renders the email verification step.
func (h *Handler) VerifyPage(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "verify", h.page("Verify your email"))
}

// VerifySubmit confirms the activation then refreshes the identity so
// the activation flag is current.
func (h *Handler) VerifySubmit(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	if err := h.svc.ActivateAccount(stdCtx); err != nil {
		h.renderAfterError(ctx, err, "verify", "Verify your email", nil)
		return
	}
	if err := h.store.RefreshProfile(stdCtx); err != nil {
		h.redirectAfterAuthLoss(ctx)
		return
	}
	h.bus.Notify(eventbus.LevelSuccess, "Account activated successfully!")
	ctx.Response.Header.Set("Location", "/dashboard")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// ForgotPasswordPage renders the reset request form.
func (h *Handler) ForgotPasswordPage(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "forgot_password", h.page("Reset your password"))
}

// ForgotPasswordSubmit asks the backend to send the reset link.
func (h *Handler) ForgotPasswordSubmit(ctx *fasthttp.RequestCtx) {
	form := parseForgotPasswordForm(ctx)
	if fe := form.validate(); !fe.ok() {
		data := h.page("Reset your password")
		data.Errors = fe
		data.Values = map[string]string{"email": form.Email}
		h.render(ctx, "forgot_password", data)
		return
	}

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	if err := h.svc.RequestPasswordReset(stdCtx, form.Email); err != nil {
		h.renderAfterError(ctx, err, "forgot_password", "Reset your password", map[string]string{"email": form.Email})
		return
	}
	h.bus.Notify(eventbus.LevelSuccess, "Password reset email sent!")
	ctx.Response.Header.Set("Location", "/login")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// ResetPasswordPage renders the new-password form for a reset token
// taken from the path.
func (h *Handler) ResetPasswordPage(ctx *fasthttp.RequestCtx) {
	token, ok := ctx.UserValue("token").(string)
	if !ok || token == "" {
		h.bus.Notify(eventbus.LevelError, domain.ErrNoResetToken.Message)
		ctx.Response.Header.Set("Location", "/forgot-password")
		ctx.SetStatusCode(fasthttp.StatusFound)
		return
	}
	data := h.page("Choose a new password")
	data.ResetToken = token
	h.render(ctx, "reset_password", data)
}

// ResetPasswordSubmit redeems the token for a new password.
func (h *Handler) ResetPasswordSubmit(ctx *fasthttp.RequestCtx) {
	token, ok := ctx.UserValue("token").(string)
	if !ok || token == "" {
		h.bus.Notify(eventbus.LevelError, domain.ErrNoResetToken.Message)
		ctx.Response.Header.Set("Location", "/forgot-password")
		ctx.SetStatusCode(fasthttp.StatusFound)
		return
	}

	form := parseResetPasswordForm(ctx)
	if fe := form.validate(); !fe.ok() {
		data := h.page("Choose a new password")
		data.Errors = fe
		data.ResetToken = token
		h.render(ctx, "reset_password", data)
		return
	}

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	if err := h.svc.ResetPassword(stdCtx, token, form.Password); err != nil {
		data := h.page("Choose a new password")
		data.ResetToken = token
		h.render(ctx, "reset_password", data)
		return
	}
	h.bus.Notify(eventbus.LevelSuccess, "Password reset successful!")
	ctx.Response.Header.Set("Location", "/login")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// GoogleCallback handles the credential posted by the Google sign-in
// button. When no client ID is configured the affordance never renders
// and this endpoint refuses.
func (h *Handler) GoogleCallback(ctx *fasthttp.RequestCtx) {
	if h.googleID == "" {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	credential := string(ctx.PostArgs().Peek("credential"))
	social, err := googleIdentity(credential)
	if err != nil {
		h.bus.Notify(eventbus.LevelError, "Google authentication failed")
		ctx.Response.Header.Set("Location", "/login")
		ctx.SetStatusCode(fasthttp.StatusFound)
		return
	}

	stdCtx, cancel := h.adapter.Attach(ctx)
	defer cancel()

	if err := h.store.SocialAuth(stdCtx, social); err != nil {
		ctx.Response.Header.Set("Location", "/login")
		ctx.SetStatusCode(fasthttp.StatusFound)
		return
	}
	h.bus.Notify(eventbus.LevelSuccess, "Social authentication successful!")
	ctx.Response.Header.Set("Location", "/dashboard")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// Dashboard renders the authenticated shell.
func (h *Handler) Dashboard(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "dashboard", h.page("Dashboard"))
}

// Logout clears the session. Safe to call repeatedly.
func (h *Handler) Logout(ctx *fasthttp.RequestCtx) {
	h.store.Logout()
	h.bus.Notify(eventbus.LevelSuccess, "Logged out successfully")
	ctx.Response.Header.Set("Location", "/")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// NotFound is the catch-all: every unknown path lands on the marketing
// page.
func (h *Handler) NotFound(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Location", "/")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// renderAfterError re-renders the page the failed operation came from.
// The error message itself arrived through the notification center via
// the transport's bus publication, so the flash area shows it. An
// auth-expired failure redirects to the login page instead.
func (h *Handler) renderAfterError(ctx *fasthttp.RequestCtx, err error, page, title string, values map[string]string) {
	if domain.IsDomainError(err, domain.ErrCodeAuthExpired) {
		h.redirectAfterAuthLoss(ctx)
		return
	}
	data := h.page(title)
	data.Values = values
	h.render(ctx, page, data)
}

func (h *Handler) redirectAfterAuthLoss(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Location", "/login")
	ctx.SetStatusCode(fasthttp.StatusFound)
}
