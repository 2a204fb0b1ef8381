package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/memo/api/handler"
	"github.com/fastygo/memo/internal/middleware"
	"github.com/fastygo/memo/web"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Dashboard *apiHandler.DashboardHandler
	TaskAPI   *apiHandler.TaskAPIHandler
	Session   *apiHandler.SessionHandler
	Health    *apiHandler.HealthHandler
}

type Guards struct {
	Route middleware.Middleware
	API   middleware.Middleware
}

// New builds the route table. Page routes sit behind the route guard, the
// task API behind the API guard.
func New(handlers Handlers, guards Guards) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	r.GET("/static/{filepath:*}", web.ServeStatic)
	r.GET("/favicon.ico", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})

	// Pages
	page := guards.Route
	r.GET("/", page(func(ctx *fasthttp.RequestCtx) {
		ctx.Redirect(middleware.DashboardPath, fasthttp.StatusSeeOther)
	}))
	r.GET("/auth", page(handlers.Auth.Page))
	r.POST("/auth/login", page(handlers.Auth.Login))
	r.POST("/auth/register", page(handlers.Auth.Register))
	r.POST("/auth/logout", page(handlers.Auth.Logout))

	r.GET("/dashboard", page(handlers.Dashboard.Show))
	r.POST("/dashboard/tasks", page(handlers.Dashboard.Create))
	r.POST("/dashboard/tasks/{id}", page(handlers.Dashboard.Update))
	r.POST("/dashboard/tasks/{id}/toggle", page(handlers.Dashboard.Toggle))
	r.POST("/dashboard/tasks/{id}/delete", page(handlers.Dashboard.Delete))

	// JSON API
	r.GET("/api/session", handlers.Session.Current)
	r.POST("/api/tasks", guards.API(handlers.TaskAPI.Execute))

	return r
}
