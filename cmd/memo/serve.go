package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/memo/api/handler"
	"github.com/fastygo/memo/gateway"
	"github.com/fastygo/memo/gateway/authapi"
	"github.com/fastygo/memo/gateway/taskapi"
	"github.com/fastygo/memo/internal/config"
	"github.com/fastygo/memo/internal/infrastructure/monitor"
	"github.com/fastygo/memo/internal/middleware"
	"github.com/fastygo/memo/internal/router"
	"github.com/fastygo/memo/internal/services"
	"github.com/fastygo/memo/internal/services/lifecycle"
	"github.com/fastygo/memo/pkg/httpcontext"
	"github.com/fastygo/memo/pkg/token"
	"github.com/fastygo/memo/usecase"
	authUC "github.com/fastygo/memo/usecase/auth"
	taskUC "github.com/fastygo/memo/usecase/task"
	"github.com/fastygo/memo/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	manager := lifecycle.New(cfg.Context.ShutdownTimeout, logger)
	appCtx, cancel := manager.Listen(cmd.Context())
	defer cancel()

	server, err := buildServer(appCtx, cfg, logger, manager)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("address", cfg.Address()))
		errCh <- server.ListenAndServe(cfg.Address())
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	var serveErr error
	select {
	case <-appCtx.Done():
	case serveErr = <-errCh:
		logger.Error("server crashed", zap.Error(serveErr))
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
	return serveErr
}

// buildServer wires the session store, the upstream clients and the HTTP
// routes into a ready fasthttp server.
func buildServer(ctx context.Context, cfg *config.Config, log *zap.Logger, manager *lifecycle.Manager) (*fasthttp.Server, error) {
	sessions, err := openSessionStore(ctx, cfg, log, manager)
	if err != nil {
		return nil, err
	}

	mon := monitor.New(storeChecks(cfg, sessions), 0, log)
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	janitor := services.NewSessionJanitor(sessions, mon, log, services.JanitorConfig{
		Interval: cfg.Session.PurgeInterval,
	})
	janitor.Start()
	manager.Register("session_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	httpClient := gateway.NewClient(cfg.AppName, cfg.Upstream.MaxConnsPerHost)
	manager.Register("upstream_client", func(context.Context) error {
		httpClient.CloseIdleConnections()
		return nil
	})
	authGateway := authapi.New(cfg.Upstream.AuthBaseURL, httpClient, log)
	taskGateway := taskapi.New(cfg.Upstream.TaskBaseURL, taskapi.Mode(cfg.Upstream.TaskMode), httpClient, log)

	signer := token.NewSigner(cfg.Session.Secret, cfg.Session.Issuer)
	authUseCase := authUC.New(authGateway, sessions, signer, cfg.Session.TTL, log)
	taskUseCase := taskUC.New(taskGateway, log)

	dispatcher := usecase.NewDispatcher()
	taskUseCase.RegisterOperations(dispatcher)
	log.Debug("task operations registered", zap.Strings("operations", dispatcher.Names()))

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	cookies := apiHandler.Cookies{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}
	guardCookie := middleware.CookieConfig{Name: cookies.Name, Secure: cookies.Secure}

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, renderer, cookies, ctxAdapter, log),
		Dashboard: apiHandler.NewDashboardHandler(taskUseCase, renderer, cookies, ctxAdapter, log),
		TaskAPI:   apiHandler.NewTaskAPIHandler(dispatcher, ctxAdapter, log),
		Session:   apiHandler.NewSessionHandler(authUseCase, cookies.Name, ctxAdapter, log),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, log),
	}
	guards := router.Guards{
		Route: middleware.RouteGuard(authUseCase, guardCookie, ctxAdapter, log),
		API:   middleware.APIGuard(authUseCase, guardCookie, ctxAdapter, log),
	}
	r := router.New(handlers, guards)

	return &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}, nil
}
