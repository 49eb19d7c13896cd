package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/flyagile/miro-mcp-server/auth"
	"github.com/flyagile/miro-mcp-server/instrumentation"
	"github.com/flyagile/miro-mcp-server/oauth"
	"github.com/flyagile/miro-mcp-server/security"
)

// Realm identifies this resource server in WWW-Authenticate challenges.
const Realm = "miro-mcp-server"

// TokenValidator validates bearer tokens into user identities. The bool
// reports whether the result came from the validation cache.
type TokenValidator interface {
	Validate(token string) (*auth.UserInfo, bool, error)
}

// OAuthClient drives the authorization code flow against Miro.
type OAuthClient interface {
	AuthorizationURL() (authURL, csrfToken, pkceVerifier string)
	ExchangeCode(ctx context.Context, code, pkceVerifier string) (*oauth2.Token, error)
}

// Options configures a Server. Validator, OAuthClient, StateCookies and
// TokenCookies are required; everything else is optional.
type Options struct {
	Validator    TokenValidator
	OAuthClient  OAuthClient
	StateCookies *oauth.StateCookieManager
	TokenCookies *oauth.TokenCookieManager

	// Metadata is served on /.well-known/oauth-protected-resource
	Metadata *auth.ProtectedResourceMetadata

	// MCPHandler handles authenticated requests under /mcp
	MCPHandler http.Handler

	// RateLimiter limits requests per client IP. Nil disables limiting.
	RateLimiter *security.RateLimiter

	// Auditor logs security events. Nil disables audit logging.
	Auditor *security.Auditor

	// Instrumentation records metrics and traces. Nil disables.
	Instrumentation *instrumentation.Instrumentation

	// TrustProxy enables X-Forwarded-For handling behind a reverse proxy
	TrustProxy        bool
	TrustedProxyCount int

	Logger *slog.Logger
}

// Server is the HTTP resource server.
type Server struct {
	validator    TokenValidator
	oauthClient  OAuthClient
	stateCookies *oauth.StateCookieManager
	tokenCookies *oauth.TokenCookieManager
	metadata     *auth.ProtectedResourceMetadata
	mcpHandler   http.Handler

	rateLimiter     *security.RateLimiter
	auditor         *security.Auditor
	instrumentation *instrumentation.Instrumentation

	trustProxy        bool
	trustedProxyCount int

	logger *slog.Logger
}

// New creates a Server from the given options.
func New(opts Options) (*Server, error) {
	if opts.Validator == nil {
		return nil, errors.New("token validator is required")
	}
	if opts.OAuthClient == nil {
		return nil, errors.New("oauth client is required")
	}
	if opts.StateCookies == nil || opts.TokenCookies == nil {
		return nil, errors.New("cookie managers are required")
	}
	if opts.Metadata != nil {
		if err := opts.Metadata.Validate(); err != nil {
			return nil, fmt.Errorf("invalid resource metadata: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		validator:         opts.Validator,
		oauthClient:       opts.OAuthClient,
		stateCookies:      opts.StateCookies,
		tokenCookies:      opts.TokenCookies,
		metadata:          opts.Metadata,
		mcpHandler:        opts.MCPHandler,
		rateLimiter:       opts.RateLimiter,
		auditor:           opts.Auditor,
		instrumentation:   opts.Instrumentation,
		trustProxy:        opts.TrustProxy,
		trustedProxyCount: opts.TrustedProxyCount,
		logger:            logger,
	}, nil
}

// Routes returns the full route table, middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /.well-known/oauth-protected-resource", s.handleMetadata)
	mux.HandleFunc("GET /oauth/authorize", s.handleAuthorize)
	mux.HandleFunc("GET /oauth/callback", s.handleCallback)

	if s.mcpHandler != nil {
		mux.Handle("/mcp", s.ValidateToken(s.mcpHandler))
	}

	return security.RequestIDMiddleware(s.observe(mux))
}

// Run serves HTTP on addr until ctx is cancelled, then drains connections
// within the shutdown timeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	return nil
}

// observe wraps the route table with request metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	if s.instrumentation == nil {
		return next
	}

	metrics := s.instrumentation.Metrics()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status,
			float64(time.Since(start).Milliseconds()))
	})
}

// statusRecorder captures the response status for metrics. It must keep
// http.Flusher visible: the MCP transport streams responses and refuses to
// serve a writer that cannot flush.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
