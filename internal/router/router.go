package router

import (
	"github.com/fasthttp/router"

	"github.com/workhive/desk/internal/guard"
	"github.com/workhive/desk/web"
)

// New wires the route surface. Policies are static: the guard projects
// (session state, policy) onto render-or-redirect per request.
func New(h *web.Handler, gm *guard.Middleware) *router.Router {
	r := router.New()

	// Public
	r.GET("/", gm.Wrap(guard.Public, h.Home))

	// Anonymous-only auth flows
	r.GET("/login", gm.Wrap(guard.RequiresAnonymous, h.LoginPage))
	r.POST("/login", gm.Wrap(guard.RequiresAnonymous, h.LoginSubmit))
	r.GET("/register", gm.Wrap(guard.RequiresAnonymous, h.RegisterPage))
	r.POST("/register", gm.Wrap(guard.RequiresAnonymous, h.RegisterSubmit))
	r.GET("/forgot-password", gm.Wrap(guard.RequiresAnonymous, h.ForgotPasswordPage))
	r.POST("/forgot-password", gm.Wrap(guard.RequiresAnonymous, h.ForgotPasswordSubmit))
	r.GET("/reset-password/{token}", gm.Wrap(guard.RequiresAnonymous, h.ResetPasswordPage))
	r.POST("/reset-password/{token}", gm.Wrap(guard.RequiresAnonymous, h.ResetPasswordSubmit))
	r.POST("/auth/google", gm.Wrap(guard.RequiresAnonymous, h.GoogleCallback))

	// Authenticated onboarding and shell
	r.GET("/register/role", gm.Wrap(guard.RequiresAuth, h.RolePage))
	r.POST("/register/role", gm.Wrap(guard.RequiresAuth, h.RoleSubmit))
	r.GET("/register/verify", gm.Wrap(guard.RequiresAuth, h.VerifyPage))
	r.POST("/register/verify", gm.Wrap(guard.RequiresAuth, h.VerifySubmit))
	r.GET("/dashboard", gm.Wrap(guard.RequiresAuth, h.Dashboard))
	r.POST("/logout", gm.Wrap(guard.RequiresAuth, h.Logout))

	// Catch-all
	r.NotFound = h.NotFound

	return r
}
