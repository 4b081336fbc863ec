package guard

import (
	"github.com/workhive/desk/domain"
)

// Policy is the declarative requirement a route places on session state
// before rendering.
type Policy int

const (
	// Public routes render for everyone.
	Public Policy = iota
	// RequiresAuth routes redirect anonymous sessions to the login page.
	RequiresAuth
	// RequiresAnonymous routes redirect authenticated sessions to the
	// dashboard.
	RequiresAnonymous
)

// Decision is the guard's verdict for one request.
type Decision int

const (
	Render Decision = iota
	Loading
	Redirect
)

// Redirect targets.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Evaluate is a pure projection of (session state, route policy) onto a
// rendering decision. It owns no state and performs no I/O.
func Evaluate(session domain.Session, policy Policy) (Decision, string) {
	if session.IsInitializing() {
		return Loading, ""
	}
	switch policy {
	case RequiresAuth:
		if !session.IsAuthenticated() {
			return Redirect, LoginPath
		}
	case RequiresAnonymous:
		if session.IsAuthenticated() {
			return Redirect, DashboardPath
		}
	}
	return Render, ""
}
