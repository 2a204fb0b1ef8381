package httpcontext

import (
	"time"

	"github.com/valyala/fasthttp"
)

// CookieOptions are the attributes shared by every cookie the server sets.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// SetCookie sets an HttpOnly, SameSite=Lax cookie scoped to the whole site.
func SetCookie(ctx *fasthttp.RequestCtx, name, value string, opts CookieOptions) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(opts.Secure)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	if opts.MaxAge > 0 {
		c.SetMaxAge(int(opts.MaxAge / time.Second))
	}
	ctx.Response.Header.SetCookie(c)
}

// ClearCookie expires name in the browser.
func ClearCookie(ctx *fasthttp.RequestCtx, name string, secure bool) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(name)
	c.SetValue("")
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(secure)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(c)
}
