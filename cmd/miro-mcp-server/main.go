// Command miro-mcp-server runs an OAuth2 resource server that authenticates
// MCP clients and bridges their requests to the Miro REST API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flyagile/miro-mcp-server/auth"
	"github.com/flyagile/miro-mcp-server/config"
	"github.com/flyagile/miro-mcp-server/instrumentation"
	"github.com/flyagile/miro-mcp-server/mcp"
	"github.com/flyagile/miro-mcp-server/miro"
	"github.com/flyagile/miro-mcp-server/oauth"
	"github.com/flyagile/miro-mcp-server/security"
	"github.com/flyagile/miro-mcp-server/server"
)

const version = "1.0.0"

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName:    "miro-mcp-server",
		ServiceVersion: version,
		Enabled:        cfg.InstrumentationEnabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := inst.Shutdown(context.Background()); err != nil {
			logger.Error("Instrumentation shutdown error", "error", err)
		}
	}()

	oauthClient := oauth.NewClient(cfg.MiroClientID, cfg.MiroClientSecret, cfg.RedirectURI)

	stateCookies, err := oauth.NewStateCookieManager(cfg.EncryptionKey, cfg.Secure())
	if err != nil {
		return err
	}
	tokenCookies, err := oauth.NewTokenCookieManager(cfg.EncryptionKey, cfg.Secure())
	if err != nil {
		return err
	}

	validator := auth.NewTokenValidator(cfg.BaseURL, logger)

	miroClient := miro.NewClient(logger)
	mcpServer := mcp.NewServer(miroClient, logger)

	var rateLimiter *security.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = security.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		logger.Info("Rate limiting enabled",
			"requests_per_second", cfg.RateLimitRPS,
			"burst", cfg.RateLimitBurst)
	}

	srv, err := server.New(server.Options{
		Validator:       validator,
		OAuthClient:     oauthClient,
		StateCookies:    stateCookies,
		TokenCookies:    tokenCookies,
		Metadata:        auth.NewMiroMetadata(cfg.BaseURL),
		MCPHandler:      mcpServer.Handler(),
		RateLimiter:     rateLimiter,
		Auditor:         security.NewAuditor(logger, true),
		Instrumentation: inst,
		TrustProxy:      cfg.TrustProxy,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting miro-mcp-server",
		"version", version,
		"base_url", cfg.BaseURL,
		"redirect_uri", cfg.RedirectURI)

	return srv.Run(ctx, cfg.Addr())
}

func newLogger(format string) *slog.Logger {
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	return slog.New(handler)
}
