// Package control wires the catalog components together and manages their lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/catalog/internal/categories"
	"github.com/vietddude/catalog/internal/core/config"
	"github.com/vietddude/catalog/internal/httpapi"
	"github.com/vietddude/catalog/internal/infra/api"
	"github.com/vietddude/catalog/internal/infra/auth"
	redisclient "github.com/vietddude/catalog/internal/infra/redis"
)

// App holds the initialized components of the service.
type App struct {
	cfg         *config.AppConfig
	client      *api.Client
	query       *categories.Query
	display     *api.Displayer
	server      *httpapi.Server
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewApp creates a new App with all dependencies initialized.
func NewApp(cfg *config.AppConfig) (*App, error) {
	log := slog.Default().With("component", "app")

	a := &App{cfg: cfg, log: log}

	// Credentials: redis session first, then the dev token
	var providers auth.Chain
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisClient = rc
		providers = append(providers, auth.NewSessionStore(rc, cfg.Auth.SessionKey, log))
		log.Info("Using Redis session store", "key", cfg.Auth.SessionKey)
	}
	providers = append(providers, auth.DevToken(cfg.Env, cfg.Auth.DevToken))

	a.client = api.NewClient(
		api.Config{
			BaseURL:  cfg.API.BaseURL,
			HostName: cfg.API.HostName,
			Timeout:  cfg.API.Timeout,
		},
		api.WithTokenSource(providers),
		api.WithLogger(slog.Default().With("component", "api")),
	)

	a.query = categories.NewQuery(
		categories.NewService(a.client),
		categories.QueryConfig{TTL: cfg.Cache.TTL, Retry: cfg.Retry, Timeout: cfg.Cache.FetchTimeout},
		slog.Default().With("component", "categories"),
	)
	a.display = api.NewDisplayer(cfg.Env, slog.Default())
	a.server = httpapi.NewServer(a.query, a.client, a.display, cfg.Server.Port, slog.Default().With("component", "http"))

	return a, nil
}

// Categories returns the category query.
func (a *App) Categories() *categories.Query {
	return a.query
}

// Displayer returns the error display layer.
func (a *App) Displayer() *api.Displayer {
	return a.display
}

// Start starts the HTTP server in the background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()
	a.log.Info("HTTP server started", "port", a.cfg.Server.Port, "env", a.cfg.Env)
	return nil
}

// Stop shuts the server down and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping catalog...")

	err := a.server.Stop(ctx)

	if err := a.client.Close(); err != nil {
		a.log.Warn("Failed to close API client", "error", err)
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	return err
}

// Close releases connections without stopping a server.
func (a *App) Close() {
	_ = a.client.Close()
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}
