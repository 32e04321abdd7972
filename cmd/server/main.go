// Package main is the entry point for the storefront-mcp server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/jamesprial/storefront-mcp/internal/catalog"
	"github.com/jamesprial/storefront-mcp/internal/config"
	"github.com/jamesprial/storefront-mcp/internal/logging"
	"github.com/jamesprial/storefront-mcp/internal/metrics"
	"github.com/jamesprial/storefront-mcp/internal/safety"
	"github.com/jamesprial/storefront-mcp/internal/storefront"
	"github.com/jamesprial/storefront-mcp/internal/tools"
)

const (
	defaultConfigPath = "/config/config.yaml"
	serverName        = "storefront-mcp"
	serverVersion     = "1.0.0"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := config.LoadDotEnv(); err != nil {
		boot.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := loadConfig(boot)
	config.ApplyEnvOverrides(cfg)

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid log configuration")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	tokenBefore := cfg.Server.AuthToken
	token, err := config.EnsureAuthToken(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("could not generate auth token, running without authentication")
	} else if tokenBefore == "" {
		logger.Info().Str("token", token).Msgf("generated auth token (set %s to persist)", config.EnvAuthToken)
	}

	// Open audit log writer if enabled.
	var auditLogger *safety.AuditLogger
	if cfg.Audit.Enabled {
		f, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Audit.LogPath).Msg("could not open audit log, audit logging disabled")
		} else {
			auditLogger = safety.NewAuditLogger(f)
			defer f.Close()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}

	client := storefront.New(
		cfg.Storefront.ShopDomain,
		cfg.Storefront.AccessToken,
		cfg.Storefront.APIVersion,
		storefront.WithHTTPDoer(&http.Client{Timeout: cfg.Storefront.RequestTimeout()}),
		storefront.WithLogger(logger.With().Str("component", "storefront").Logger()),
		storefront.WithObserver(recorder),
		storefront.WithPartialData(cfg.Storefront.PartialData),
	)
	logger.Info().EmbedObject(client.Config()).Str("endpoint", client.Endpoint()).Msg("storefront configured")

	var handleFilter catalog.HandleFilter
	if f := safety.NewFilter(cfg.Safety.Handles.Allowlist, cfg.Safety.Handles.Denylist); !f.Empty() {
		handleFilter = f
	}
	svc := catalog.WithHandleFilter(catalog.NewGraphQLCatalog(client), handleFilter)

	var confirm *safety.ConfirmationTracker
	if cfg.Safety.ConfirmCart {
		confirm = safety.NewConfirmationTracker(catalog.ConfirmableTools, 0)
	}

	// Build MCP server.
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)
	names := tools.RegisterAll(mcpServer, catalog.CatalogTools(svc, confirm, auditLogger))
	logger.Info().Strs("tools", names).Msg("registered MCP tools")

	handler := newRouter(routerDeps{
		mcp:            server.NewStreamableHTTPServer(mcpServer),
		svc:            svc,
		gatherer:       registry,
		authToken:      cfg.Server.AuthToken,
		allowedOrigins: cfg.Server.AllowedOrigins,
		logger:         logger,
		audit:          auditLogger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", addr).Msg("storefront-mcp listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("server stopped")
}

// loadConfig reads the config file named by STOREFRONT_MCP_CONFIG_PATH or the
// default /config/config.yaml. If the file cannot be read, DefaultConfig is
// returned.
func loadConfig(logger zerolog.Logger) *config.Config {
	path := os.Getenv(config.EnvConfigPath)
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Info().Err(err).Str("path", path).Msg("could not load config, using defaults")
		return config.DefaultConfig()
	}

	logger.Info().Str("path", path).Msg("loaded config")
	return cfg
}
