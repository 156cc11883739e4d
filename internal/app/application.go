// Package app wires the components into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/rs/cors"

	"intouch/internal/api"
	"intouch/internal/auth"
	"intouch/internal/chat"
	"intouch/internal/config"
	"intouch/internal/conversation"
	"intouch/internal/database"
	"intouch/internal/delivery"
	"intouch/internal/hub"
	"intouch/internal/presence"
	"intouch/internal/registry"
	"intouch/internal/websocket"
	dbconfig "intouch/pkg/database"
)

// Application owns every long-lived component.
// Initialization order: Database → Registry → Hub → Delivery → Presence →
// Chat → WebSocket → API → HTTP.
type Application struct {
	config     *config.Config
	logger     *slog.Logger
	dbManager  *database.Manager
	registry   *registry.Registry
	mailbox    *hub.Hub
	throttle   *presence.Throttle
	chat       *chat.Handler
	tokens     *auth.Tokens
	wsHandler  *websocket.Handler
	httpServer *http.Server

	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	stopOnce sync.Once
	stopErr  error
}

func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbCfg := dbconfig.DefaultConfig()
	dbCfg.DatabasePath = cfg.Database.Path
	dbCfg.MaxConnections = cfg.Database.MaxConnections
	dbCfg.BusyTimeout = cfg.Database.BusyTimeout
	dbCfg.WriteTimeout = cfg.Database.WriteTimeout

	dbManager, err := database.NewManager(dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database manager: %w", err)
	}
	if err := dbManager.Migrate(context.Background()); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	throttle, err := presence.NewThrottle(cfg.Presence.ActivityThrottle)
	if err != nil {
		_ = dbManager.Close()
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		_ = throttle.Close()
		_ = dbManager.Close()
		return nil, err
	}
	resolver := auth.NewResolver(tokens, cfg.Auth.CookieName)

	reg := registry.NewRegistry()
	mailbox := hub.NewHub(dbManager, reg, hub.Config{
		PumpInterval: cfg.Delivery.PumpInterval,
		PendingTTL:   cfg.Delivery.PendingTTL,
		TypingTTL:    cfg.Delivery.TypingTTL,
	}, logger)
	deliverer := delivery.NewDeliverer(reg, mailbox, logger)
	tracker := presence.NewTracker(reg, dbManager, deliverer, throttle, logger)
	conversations := conversation.NewService(dbManager, logger)

	chatHandler := chat.NewHandler(dbManager, tracker, deliverer, conversations, mailbox, chat.Config{
		MaxContentRunes:    cfg.Chat.MaxContentRunes,
		MaxMalformedFrames: cfg.Chat.MaxMalformedFrames,
		RateLimit:          cfg.Chat.RateLimit,
		RateWindow:         cfg.Chat.RateWindow,
	}, logger)

	wsHandler := websocket.NewHandler(chatHandler, resolver, websocket.Config{
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		HandshakeTimeout: websocket.DefaultConfig().HandshakeTimeout,
		ReadLimit:        cfg.WebSocket.ReadLimit,
		PongWait:         cfg.WebSocket.PongWait,
		PingInterval:     cfg.WebSocket.PingInterval,
		WriteTimeout:     cfg.WebSocket.WriteTimeout,
		SendBuffer:       cfg.WebSocket.SendBuffer,
	}, logger)

	apiServer := api.NewServer(resolver, conversations, tracker, dbManager, reg, wsHandler, api.Config{
		DefaultHistoryLimit: cfg.API.DefaultHistoryLimit,
		MaxHistoryLimit:     cfg.API.MaxHistoryLimit,
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      newCORS(cfg.WebSocket.AllowedOrigins).Handler(apiServer),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:     cfg,
		logger:     logger.With("component", "app"),
		dbManager:  dbManager,
		registry:   reg,
		mailbox:    mailbox,
		throttle:   throttle,
		chat:       chatHandler,
		tokens:     tokens,
		wsHandler:  wsHandler,
		httpServer: httpServer,
	}, nil
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})
}

// Start binds the listener, starts the background workers and serves HTTP.
// It returns once the server accepts connections.
func (app *Application) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	app.listener = listener

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.cancel = cancel

	if err := app.mailbox.Start(runCtx); err != nil {
		cancel()
		_ = listener.Close()
		return fmt.Errorf("failed to start message hub: %w", err)
	}

	app.wg.Add(2)
	go func() {
		defer app.wg.Done()
		app.chat.RunMaintenance(runCtx, app.config.Chat.MaintenanceInterval)
	}()
	go func() {
		defer app.wg.Done()
		if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("http server stopped", "error", err)
		}
	}()

	app.logger.Info("intouch started", "addr", listener.Addr().String())
	return nil
}

// Stop shuts down in reverse order: HTTP, sockets, hub, workers, database.
// Later calls return the first result.
func (app *Application) Stop(ctx context.Context) error {
	app.stopOnce.Do(func() {
		app.stopErr = app.stop(ctx)
	})
	return app.stopErr
}

func (app *Application) stop(ctx context.Context) error {
	app.logger.Info("shutting down")
	var errs []error

	if err := app.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := app.wsHandler.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("websocket shutdown: %w", err))
	}
	if err := app.mailbox.Stop(); err != nil && !errors.Is(err, hub.ErrHubNotRunning) {
		errs = append(errs, fmt.Errorf("hub shutdown: %w", err))
	}
	if app.cancel != nil {
		app.cancel()
	}
	app.wg.Wait()

	if err := app.throttle.Close(); err != nil {
		errs = append(errs, fmt.Errorf("throttle shutdown: %w", err))
	}
	if err := app.dbManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database shutdown: %w", err))
	}

	app.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// Addr returns the bound address once started, the configured one before.
func (app *Application) Addr() string {
	if app.listener != nil {
		return app.listener.Addr().String()
	}
	return app.httpServer.Addr
}

// Tokens exposes the identity token issuer for tooling and tests.
func (app *Application) Tokens() *auth.Tokens {
	return app.tokens
}
