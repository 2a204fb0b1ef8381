package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/api/transport"
	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/httpcontext"
	"github.com/fastygo/memo/pkg/logger"
	"github.com/fastygo/memo/web"
)

// flashCookie carries one notice across a redirect.
const flashCookie = "memo-notice"

// Cookies describes the session cookie handed to the browser.
type Cookies struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, h.logger)
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	if vErr, ok := domain.AsValidation(err); ok {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewFieldErrors(string(domain.ErrCodeInvalid), vErr.Fields))
		return
	}
	status, code := mapError(err)
	h.respondJSON(ctx, status, transport.NewError(code, publicMessage(err), nil))
}

// publicMessage hides wrapped causes from API callers.
func publicMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	if aErr, ok := domain.AsAuth(err); ok {
		return aErr.Message
	}
	return "internal error"
}

func mapError(err error) (int, string) {
	if _, ok := domain.AsValidation(err); ok {
		return http.StatusUnprocessableEntity, string(domain.ErrCodeInvalid)
	}
	if aErr, ok := domain.AsAuth(err); ok {
		// rejections keep the auth service's 4xx, anything else is its failure
		if aErr.Status >= 400 && aErr.Status < 500 {
			return aErr.Status, string(domain.ErrCodeUnauthorized)
		}
		return http.StatusBadGateway, string(domain.ErrCodeUpstream)
	}
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeUpstream):
		return http.StatusBadGateway, string(domain.ErrCodeUpstream)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// pageHandler renders HTML pages and passes notices between them.
type pageHandler struct {
	baseHandler
	renderer *web.Renderer
	cookies  Cookies
}

func newPageHandler(renderer *web.Renderer, cookies Cookies, adapter *httpcontext.Adapter, logger *zap.Logger) pageHandler {
	return pageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		renderer:    renderer,
		cookies:     cookies,
	}
}

func (h pageHandler) render(ctx *fasthttp.RequestCtx, status int, page string, data interface{}) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(status)
	if err := h.renderer.Render(ctx, page, data); err != nil {
		h.logger.Error("render failed", zap.String("page", page), zap.Error(err))
		ctx.ResetBody()
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetStatusCode(http.StatusInternalServerError)
		ctx.SetBodyString("internal error")
	}
}

// redirect sends the browser to location with notice shown on arrival.
func (h pageHandler) redirect(ctx *fasthttp.RequestCtx, location string, notice *web.Notice) {
	if notice != nil {
		if raw, err := json.Marshal(notice); err == nil {
			httpcontext.SetCookie(ctx, flashCookie, base64.RawURLEncoding.EncodeToString(raw), httpcontext.CookieOptions{
				Secure: h.cookies.Secure,
				MaxAge: time.Minute,
			})
		}
	}
	ctx.Redirect(location, fasthttp.StatusSeeOther)
}

// takeNotice returns the notice left by the previous redirect and clears it.
func (h pageHandler) takeNotice(ctx *fasthttp.RequestCtx) *web.Notice {
	raw := ctx.Request.Header.Cookie(flashCookie)
	if len(raw) == 0 {
		return nil
	}
	httpcontext.ClearCookie(ctx, flashCookie, h.cookies.Secure)

	decoded, err := base64.RawURLEncoding.DecodeString(string(raw))
	if err != nil {
		return nil
	}
	var notice web.Notice
	if err := json.Unmarshal(decoded, &notice); err != nil {
		return nil
	}
	return &notice
}

func (h pageHandler) setSessionCookie(ctx *fasthttp.RequestCtx, token string) {
	httpcontext.SetCookie(ctx, h.cookies.Name, token, httpcontext.CookieOptions{
		Secure: h.cookies.Secure,
		MaxAge: h.cookies.TTL,
	})
}

func (h pageHandler) clearSessionCookie(ctx *fasthttp.RequestCtx) {
	httpcontext.ClearCookie(ctx, h.cookies.Name, h.cookies.Secure)
}

func formValue(ctx *fasthttp.RequestCtx, key string) string {
	return string(ctx.FormValue(key))
}

func formChecked(ctx *fasthttp.RequestCtx, key string) bool {
	switch formValue(ctx, key) {
	case "yes", "on", "true", "1":
		return true
	}
	return false
}
