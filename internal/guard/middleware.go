package guard

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/workhive/desk/domain"
)

// SessionSource yields the current session snapshot per request.
type SessionSource interface {
	Snapshot() domain.Session
}

// LoadingRenderer draws the interstitial shown while the session is
// still initializing.
type LoadingRenderer func(ctx *fasthttp.RequestCtx)

// Middleware applies a route policy in front of a page handler.
type Middleware struct {
	sessions SessionSource
	loading  LoadingRenderer
	logger   *zap.Logger
}

func NewMiddleware(sessions SessionSource, loading LoadingRenderer, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{sessions: sessions, loading: loading, logger: logger}
}

// Wrap gates next behind the policy.
func (m *Middleware) Wrap(policy Policy, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		decision, target := Evaluate(m.sessions.Snapshot(), policy)
		switch decision {
		case Loading:
			if m.loading != nil {
				m.loading(ctx)
				return
			}
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		case Redirect:
			m.logger.Debug("route guard redirect",
				zap.String("from", string(ctx.Path())),
				zap.String("to", target),
			)
			ctx.Response.Header.Set("Location", target)
			ctx.SetStatusCode(fasthttp.StatusFound)
		default:
			next(ctx)
		}
	}
}
