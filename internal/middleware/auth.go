package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/api/transport"
	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/httpcontext"
	"github.com/fastygo/memo/pkg/logger"
)

const (
	LoginPath     = "/auth"
	DashboardPath = "/dashboard"
)

// Authenticator decides whether a cookie value belongs to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*domain.Session, error)
}

// CookieConfig names the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// RouteGuard protects page routes. Visitors without a session are sent to
// the login page and logged-in users are sent from the login page to the
// dashboard.
func RouteGuard(auth Authenticator, cookie CookieConfig, adapter *httpcontext.Adapter, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			path := string(ctx.Path())
			if bypassed(path) {
				next(ctx)
				return
			}

			session := authenticate(ctx, auth, cookie, adapter, log)
			if session != nil {
				httpcontext.WithSession(ctx, session)
			}

			switch {
			case session == nil && !isAuthPath(path):
				ctx.Redirect(LoginPath, fasthttp.StatusSeeOther)
				return
			case session != nil && path == LoginPath:
				ctx.Redirect(DashboardPath, fasthttp.StatusSeeOther)
				return
			}
			next(ctx)
		}
	}
}

// APIGuard protects JSON routes with a 401 envelope.
func APIGuard(auth Authenticator, cookie CookieConfig, adapter *httpcontext.Adapter, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			session := authenticate(ctx, auth, cookie, adapter, log)
			if session == nil {
				ctx.SetContentType("application/json")
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBodyString(transport.NewError(string(domain.ErrCodeUnauthorized), "unauthorized", nil).String())
				return
			}
			httpcontext.WithSession(ctx, session)
			next(ctx)
		}
	}
}

// authenticate returns the request's session or nil. A cookie that no
// longer authenticates is cleared.
func authenticate(ctx *fasthttp.RequestCtx, auth Authenticator, cookie CookieConfig, adapter *httpcontext.Adapter, log *zap.Logger) *domain.Session {
	raw := string(ctx.Request.Header.Cookie(cookie.Name))
	if raw == "" {
		return nil
	}

	stdCtx, cancel := attach(ctx, adapter)
	defer cancel()

	session, err := auth.Authenticate(stdCtx, raw)
	if err == nil {
		return session
	}
	if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		httpcontext.ClearCookie(ctx, cookie.Name, cookie.Secure)
		return nil
	}
	logger.WithRequestID(stdCtx, log).Warn("session lookup failed", zap.Error(err))
	return nil
}

func attach(ctx *fasthttp.RequestCtx, adapter *httpcontext.Adapter) (context.Context, context.CancelFunc) {
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return adapter.Attach(ctx)
}

func bypassed(path string) bool {
	return path == "/api" ||
		strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/static/") ||
		path == "/favicon.ico" ||
		path == "/health"
}

func isAuthPath(path string) bool {
	return path == LoginPath || strings.HasPrefix(path, LoginPath+"/")
}
