package handler

import (
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/httpcontext"
	authUC "github.com/fastygo/memo/usecase/auth"
	"github.com/fastygo/memo/web"
)

const (
	tabLogin    = "login"
	tabRegister = "register"
)

// AuthHandler serves the login and registration page.
type AuthHandler struct {
	pageHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, renderer *web.Renderer, cookies Cookies, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	if cookies.TTL <= 0 {
		cookies.TTL = uc.TTL()
	}
	return &AuthHandler{
		pageHandler: newPageHandler(renderer, cookies, adapter, logger),
		uc:          uc,
	}
}

// Page renders the auth page on the tab named by ?tab.
func (h *AuthHandler) Page(ctx *fasthttp.RequestCtx) {
	tab := tabLogin
	if string(ctx.QueryArgs().Peek("tab")) == tabRegister {
		tab = tabRegister
	}
	h.render(ctx, http.StatusOK, "auth", web.AuthPage{Tab: tab, Notice: h.takeNotice(ctx)})
}

func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	form := authUC.LoginForm{
		Username:   formValue(ctx, "username"),
		Password:   formValue(ctx, "password"),
		RememberMe: formChecked(ctx, "remember_me"),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, token, err := h.uc.Login(stdCtx, form)
	if err != nil {
		page := web.AuthPage{Tab: tabLogin, Username: form.Username, RememberMe: form.RememberMe}
		h.failForm(ctx, &page, err, "Login failed")
		return
	}

	h.setSessionCookie(ctx, token)
	h.redirect(ctx, "/dashboard", &web.Notice{
		Title:   "Login successful",
		Message: fmt.Sprintf("Welcome back, %s!", session.Username),
		Color:   web.ColorSuccess,
	})
}

func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	form := authUC.RegisterForm{
		Username:        formValue(ctx, "username"),
		Password:        formValue(ctx, "password"),
		PasswordConfirm: formValue(ctx, "password_confirm"),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Register(stdCtx, form); err != nil {
		page := web.AuthPage{Tab: tabRegister, Username: form.Username}
		h.failForm(ctx, &page, err, "Registration failed")
		return
	}

	h.log(stdCtx).Info("user registered", zap.String("username", form.Username))
	h.redirect(ctx, "/auth?tab="+tabLogin, &web.Notice{
		Title:   "Registration successful",
		Message: "Please check your email to verify your account",
		Color:   web.ColorSuccess,
	})
}

// Logout revokes the session and clears the cookie. It never calls the
// auth service.
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, string(ctx.Request.Header.Cookie(h.cookies.Name))); err != nil {
		h.log(stdCtx).Warn("logout failed", zap.Error(err))
	}
	h.clearSessionCookie(ctx)
	h.redirect(ctx, "/auth", &web.Notice{Title: "Logged out", Message: "See you soon", Color: web.ColorInfo})
}

// failForm re-renders the auth form after a failed submit. Field problems
// show next to their inputs; service rejections show as a notice.
func (h *AuthHandler) failForm(ctx *fasthttp.RequestCtx, page *web.AuthPage, err error, title string) {
	status, _ := mapError(err)
	if vErr, ok := domain.AsValidation(err); ok {
		page.Errors = vErr.Fields
		h.render(ctx, status, "auth", page)
		return
	}

	message := publicMessage(err)
	if aErr, ok := domain.AsAuth(err); ok {
		message = aErr.Message
	} else {
		h.logger.Warn("auth request failed", zap.String("tab", page.Tab), zap.Error(err))
	}
	page.Notice = &web.Notice{Title: title, Message: message, Color: web.ColorError}
	h.render(ctx, status, "auth", page)
}
