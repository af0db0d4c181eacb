// Package runtime assembles the bot, the delivery recorder and the webhook
// adapter into a running HTTP service.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/githubbot-connect/internal/bot"
	"github.com/tjfontaine/githubbot-connect/internal/config"
	"github.com/tjfontaine/githubbot-connect/internal/delivery"
	"github.com/tjfontaine/githubbot-connect/internal/registration"
	"github.com/tjfontaine/githubbot-connect/internal/server"
	"github.com/tjfontaine/githubbot-connect/internal/storage"
	"github.com/tjfontaine/githubbot-connect/pkg/connect"
)

// ForwardSuffix is appended to the webhook path for the forward-mode route.
const ForwardSuffix = "/forward"

// App is the assembled webhook service.
//
// Routes:
//
//	POST {webhook.path}          results written by the adapter (send mode)
//	POST {webhook.path}/forward  results forwarded and rendered by the pipeline
//	GET  /deliveries[/{id}]      recorded deliveries, when storage is enabled
//	GET  /healthz
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	bot      *bot.Bot[registration.Payload]
	store    storage.DeliveryStore
	storeSet bool
	server   *server.Server
}

// New builds an App from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}

	app := &App{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if app.bot == nil {
		app.bot = bot.New[registration.Payload](cfg.Webhook.Events...)
		if err := registration.RegisterBuiltins(app.bot); err != nil {
			return nil, err
		}
	}

	if !app.storeSet {
		store, err := storeFromConfig(cfg.Storage.Type, cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	serviceName := ""
	if cfg.Telemetry.Enabled {
		serviceName = cfg.Telemetry.ServiceName
	}
	app.server = server.New(server.Options{
		Port:              cfg.Server.Port,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		Logger:            app.logger,
		ServiceName:       serviceName,
	})

	app.registerRoutes()
	return app, nil
}

func (a *App) registerRoutes() {
	var dispatcher connect.Bot[registration.Payload, registration.Payload] = a.bot
	if a.store != nil {
		dispatcher = delivery.NewRecorder(dispatcher, a.store, a.logger)
	}

	adapter := connect.New(dispatcher,
		connect.WithLogger(a.logger),
		connect.WithEventHeader(a.cfg.Webhook.Header),
	)
	render := server.RenderForwarded[registration.Payload]()

	a.server.Router.Route(a.cfg.Webhook.Path, func(r chi.Router) {
		r.Use(delivery.DeliveryIDMiddleware)
		r.Use(connect.JSONBody[registration.Payload]())

		r.With(adapter.Middleware(connect.WithSend(true))).Post("/", render)
		r.With(adapter.Middleware()).Post(ForwardSuffix, render)
	})

	if a.store != nil {
		a.server.Router.Mount("/deliveries", server.NewDeliveryHandler(a.store).Routes())
	}

	var withHandlers int
	for _, event := range a.bot.Events() {
		if a.bot.Handlers(event) > 0 {
			withHandlers++
		}
	}
	a.logger.Info("webhook routes registered",
		slog.String("send", a.cfg.Webhook.Path),
		slog.String("forward", a.cfg.Webhook.Path+ForwardSuffix),
		slog.Int("events", len(a.bot.Events())),
		slog.Int("events_with_handlers", withHandlers),
	)
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Router
}

// Bot returns the bot receiving deliveries.
func (a *App) Bot() *bot.Bot[registration.Payload] {
	return a.bot
}

// Start serves HTTP until Shutdown. It blocks.
func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the HTTP server and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}
