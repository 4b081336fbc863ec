package web

import (
	"regexp"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/workhive/desk/domain"
)

// Field-level validation lives entirely in the view layer: a form that
// fails here is re-rendered with per-field messages and never reaches
// the network.

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+[0-9]{10,15}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// fieldErrors maps form field name to a user-facing message.
type fieldErrors map[string]string

func (fe fieldErrors) ok() bool { return len(fe) == 0 }

type loginForm struct {
	Email    string
	Password string
}

func parseLoginForm(ctx *fasthttp.RequestCtx) loginForm {
	return loginForm{
		Email:    formValue(ctx, "email"),
		Password: string(ctx.PostArgs().Peek("password")),
	}
}

func (f loginForm) validate() fieldErrors {
	fe := fieldErrors{}
	checkEmail(fe, f.Email)
	if f.Password == "" {
		fe["password"] = "Password is required"
	}
	return fe
}

type registerForm struct {
	FirstName       string
	LastName        string
	Email           string
	FullPhone       string
	Password        string
	ConfirmPassword string
	Terms           bool
}

func parseRegisterForm(ctx *fasthttp.RequestCtx) registerForm {
	return registerForm{
		FirstName:       formValue(ctx, "first_name"),
		LastName:        formValue(ctx, "last_name"),
		Email:           formValue(ctx, "email"),
		FullPhone:       formValue(ctx, "full_phone_number"),
		Password:        string(ctx.PostArgs().Peek("password")),
		ConfirmPassword: string(ctx.PostArgs().Peek("confirm_password")),
		Terms:           ctx.PostArgs().Has("terms"),
	}
}

func (f registerForm) validate() fieldErrors {
	fe := fieldErrors{}
	checkName(fe, "first_name", f.FirstName, "First name")
	checkName(fe, "last_name", f.LastName, "Last name")
	checkEmail(fe, f.Email)
	if !phonePattern.MatchString(f.FullPhone) {
		fe["full_phone_number"] = "Enter a phone number like +1234567890"
	}
	checkPassword(fe, "password", f.Password)
	if f.ConfirmPassword != f.Password {
		fe["confirm_password"] = "Passwords do not match"
	}
	if !f.Terms {
		fe["terms"] = "You must accept the terms to continue"
	}
	return fe
}

type forgotPasswordForm struct {
	Email string
}

func parseForgotPasswordForm(ctx *fasthttp.RequestCtx) forgotPasswordForm {
	return forgotPasswordForm{Email: formValue(ctx, "email")}
}

func (f forgotPasswordForm) validate() fieldErrors {
	fe := fieldErrors{}
	checkEmail(fe, f.Email)
	return fe
}

type resetPasswordForm struct {
	Password        string
	ConfirmPassword string
}

func parseResetPasswordForm(ctx *fasthttp.RequestCtx) resetPasswordForm {
	return resetPasswordForm{
		Password:        string(ctx.PostArgs().Peek("password")),
		ConfirmPassword: string(ctx.PostArgs().Peek("confirm_password")),
	}
}

func (f resetPasswordForm) validate() fieldErrors {
	fe := fieldErrors{}
	checkPassword(fe, "password", f.Password)
	if f.ConfirmPassword != f.Password {
		fe["confirm_password"] = "Passwords do not match"
	}
	return fe
}

type roleForm struct {
	Role string
}

func parseRoleForm(ctx *fasthttp.RequestCtx) roleForm {
	return roleForm{Role: formValue(ctx, "role")}
}

func (f roleForm) validate() fieldErrors {
	fe := fieldErrors{}
	if !domain.ValidRole(f.Role) {
		fe["role"] = "Choose how you want to use the platform"
	}
	return fe
}

func checkName(fe fieldErrors, field, value, label string) {
	if len(strings.TrimSpace(value)) < 2 {
		fe[field] = label + " must be at least 2 characters"
	}
}

func checkEmail(fe fieldErrors, value string) {
	if !emailPattern.MatchString(value) {
		fe["email"] = "Enter a valid email address"
	}
}

func checkPassword(fe fieldErrors, field, value string) {
	switch {
	case len(value) < 8:
		fe[field] = "Password must be at least 8 characters"
	case !upperPattern.MatchString(value) || !lowerPattern.MatchString(value) || !digitPattern.MatchString(value):
		fe[field] = "Password must mix upper case, lower case and digits"
	}
}

func formValue(ctx *fasthttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.PostArgs().Peek(key)))
}
