package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/workhive/desk/account"
	apiclient "github.com/workhive/desk/api/client"
	"github.com/workhive/desk/internal/config"
	"github.com/workhive/desk/internal/credstore"
	"github.com/workhive/desk/internal/eventbus"
	"github.com/workhive/desk/internal/guard"
	"github.com/workhive/desk/internal/infrastructure/monitor"
	"github.com/workhive/desk/internal/notify"
	"github.com/workhive/desk/internal/router"
	"github.com/workhive/desk/internal/services"
	"github.com/workhive/desk/internal/services/lifecycle"
	"github.com/workhive/desk/pkg/httpcontext"
	"github.com/workhive/desk/pkg/logger"
	"github.com/workhive/desk/session"
	"github.com/workhive/desk/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)

	creds, err := credstore.Open(cfg.Credstore.Path)
	if err != nil {
		zapLogger.Fatal("failed to open credential store", zap.Error(err))
	}
	manager.Register("credstore", func(ctx context.Context) error {
		return creds.Close()
	})

	bus := eventbus.New()
	manager.Register("eventbus", func(ctx context.Context) error {
		bus.WaitAsync()
		return nil
	})

	notes := notify.NewCenter()
	if err := notes.Attach(bus); err != nil {
		zapLogger.Fatal("failed to attach notification center", zap.Error(err))
	}

	// The store is wired after the client, so the token source closes
	// over a variable assigned below; Token is nil-safe for the gap.
	var store *session.Store
	api := apiclient.New(
		cfg.API.BaseURL,
		cfg.API.Timeout,
		apiclient.TokenFunc(func() string { return store.Token() }),
		bus,
		zapLogger,
	)
	svc := account.New(api, zapLogger)
	store = session.NewStore(creds, svc, zapLogger)

	// A 401 from any endpoint ends the session; the store is the only
	// subscriber that owns the clear-and-go-anonymous reaction.
	if err := bus.SubscribeAuthExpired(store.Expire); err != nil {
		zapLogger.Fatal("failed to subscribe auth expiry handler", zap.Error(err))
	}

	store.Initialize()
	go store.Revalidate(appCtx)

	mon := monitor.New(api, creds, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	revalidator := services.NewRevalidator(store, cfg.Revalidate.Interval, cfg.Context.RequestTimeout, zapLogger)
	if err := revalidator.Start(); err != nil {
		zapLogger.Fatal("failed to start revalidator", zap.Error(err))
	}
	manager.Register("revalidator", func(ctx context.Context) error {
		return revalidator.Stop(ctx)
	})

	adapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	handler := web.NewHandler(store, svc, bus, notes, mon, adapter, zapLogger, cfg.Social.GoogleClientID)
	gm := guard.NewMiddleware(store, handler.Loading, zapLogger)
	r := router.New(handler, gm)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("desk app listening",
			zap.String("address", cfg.Address()),
			zap.String("api_base_url", cfg.API.BaseURL),
			zap.Bool("google_signin", cfg.GoogleSignInEnabled()),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()
	zapLogger.Info("shutdown signal received")

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
