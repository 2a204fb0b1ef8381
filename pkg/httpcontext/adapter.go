package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/memo/domain"
	appLogger "github.com/fastygo/memo/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeySession    Key = "session"
)

// userValueSession is the fasthttp user value the guards store the session under.
const userValueSession = "memo.session"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if session := SessionFromRequest(ctx); session != nil {
		stdCtx = context.WithValue(stdCtx, KeySession, session)
	}

	return stdCtx, cancel
}

// RequestID returns the request's X-Request-ID, generating and echoing one
// on the response when the client did not send it.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if existing := string(ctx.Response.Header.Peek("X-Request-ID")); existing != "" {
		return existing
	}
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set("X-Request-ID", reqID)
	return reqID
}

// WithSession records the authenticated session on the request.
func WithSession(ctx *fasthttp.RequestCtx, session *domain.Session) {
	ctx.SetUserValue(userValueSession, session)
}

// SessionFromRequest returns the session stored by WithSession.
func SessionFromRequest(ctx *fasthttp.RequestCtx) *domain.Session {
	if ctx == nil {
		return nil
	}
	session, _ := ctx.UserValue(userValueSession).(*domain.Session)
	return session
}

// SessionFromContext returns the session attached by Attach.
func SessionFromContext(ctx context.Context) *domain.Session {
	if ctx == nil {
		return nil
	}
	session, _ := ctx.Value(KeySession).(*domain.Session)
	return session
}
