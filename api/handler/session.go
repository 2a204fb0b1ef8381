package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/api/transport"
	"github.com/fastygo/memo/pkg/httpcontext"
	authUC "github.com/fastygo/memo/usecase/auth"
)

// SessionHandler reports whether the caller is logged in.
type SessionHandler struct {
	baseHandler
	uc         *authUC.UseCase
	cookieName string
}

func NewSessionHandler(uc *authUC.UseCase, cookieName string, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookieName:  cookieName,
	}
}

// @Summary Current session
// @Tags auth
// @Router /api/session [get]
func (h *SessionHandler) Current(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	resp := transport.SessionResponse{}
	if session, err := h.uc.Authenticate(stdCtx, string(ctx.Request.Header.Cookie(h.cookieName))); err == nil {
		resp.Authenticated = true
		resp.Username = session.Username
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}
