package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flyagile/miro-mcp-server/instrumentation"
	"github.com/flyagile/miro-mcp-server/oauth"
	"github.com/flyagile/miro-mcp-server/security"
)

// startSpan opens a tracing span when instrumentation is configured. The
// returned span may be nil; the instrumentation span helpers accept that.
func (s *Server) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	if s.instrumentation == nil {
		return r.Context(), nil
	}
	return s.instrumentation.Tracer("server").Start(r.Context(), name)
}

func endSpan(span trace.Span) {
	if span != nil {
		span.End()
	}
}

var (
	errProviderDenied     = errors.New("authorization denied by provider")
	errCallbackIncomplete = errors.New("callback missing code or state")
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleMetadata serves RFC 9728 Protected Resource Metadata so MCP clients
// can discover where to authenticate.
func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	if s.metadata == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	security.SetSecurityHeaders(w, "")
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(s.metadata); err != nil {
		s.logger.Error("Failed to encode resource metadata", "error", err)
	}
}

// handleAuthorize starts the authorization code flow: fresh CSRF token and
// PKCE verifier sealed into the state cookie, then a redirect to Miro's
// consent screen.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	clientIP := security.GetClientIP(r, s.trustProxy, s.trustedProxyCount)

	if s.checkRateLimit(w, r, clientIP) {
		return
	}

	ctx, span := s.startSpan(r, "oauth.authorize")
	defer endSpan(span)
	instrumentation.SetSpanAttributes(span,
		attribute.String(instrumentation.AttrClientIP, clientIP))
	r = r.WithContext(ctx)

	authURL, csrfToken, pkceVerifier := s.oauthClient.AuthorizationURL()

	state := s.stateCookies.NewState(csrfToken, pkceVerifier)
	cookie, err := s.stateCookies.CreateCookie(state)
	if err != nil {
		s.logger.Error("Failed to create state cookie", "error", err)
		instrumentation.RecordError(span, err)
		s.renderErrorPage(w, "Could not start the authorization flow. Please try again.")
		return
	}

	if s.auditor != nil {
		s.auditor.LogEvent(security.Event{
			Type:      security.EventAuthorizationFlowStarted,
			IPAddress: clientIP,
		})
	}
	if s.instrumentation != nil {
		s.instrumentation.Metrics().RecordAuthorizationStarted(r.Context())
	}

	s.logger.Info("Redirecting to Miro authorization", "ip", clientIP)

	instrumentation.SetSpanSuccess(span)
	http.SetCookie(w, cookie)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the flow: validates the returned state against
// the sealed cookie, exchanges the code with the PKCE verifier, and seals
// the resulting tokens into the token cookie. Every failure renders a
// generic error page; details stay in the logs.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	clientIP := security.GetClientIP(r, s.trustProxy, s.trustedProxyCount)

	if s.checkRateLimit(w, r, clientIP) {
		return
	}

	ctx, span := s.startSpan(r, "oauth.callback")
	defer endSpan(span)
	instrumentation.SetSpanAttributes(span,
		attribute.String(instrumentation.AttrClientIP, clientIP))
	r = r.WithContext(ctx)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		s.logger.Warn("Authorization denied by provider", "error", errParam, "ip", clientIP)
		instrumentation.RecordError(span, errProviderDenied)
		s.recordCallback(r, false)
		s.renderErrorPage(w, "Authorization was denied. Please try again.")
		return
	}

	code := r.URL.Query().Get("code")
	returnedState := r.URL.Query().Get("state")
	if code == "" || returnedState == "" {
		s.logger.Warn("Callback missing code or state", "ip", clientIP)
		instrumentation.RecordError(span, errCallbackIncomplete)
		s.recordCallback(r, false)
		s.renderErrorPage(w, "The authorization response was incomplete.")
		return
	}

	stateCookie, err := r.Cookie(oauth.StateCookieName)
	if err != nil {
		s.logger.Warn("State cookie not found", "ip", clientIP)
		if s.auditor != nil {
			s.auditor.LogCookieRejected(clientIP, "state cookie missing")
		}
		instrumentation.RecordError(span, err)
		s.recordCallback(r, false)
		s.renderErrorPage(w, "Your authorization session was not found. Please start over.")
		return
	}

	state, err := s.stateCookies.RetrieveAndValidate(stateCookie.Value, returnedState)
	if err != nil {
		s.logger.Warn("State cookie validation failed", "ip", clientIP, "error", err)
		s.auditStateFailure(clientIP, err)
		instrumentation.RecordError(span, err)
		s.recordCallback(r, false)
		s.renderErrorPage(w, "Your authorization session was invalid or expired. Please start over.")
		return
	}

	tokens, err := s.oauthClient.ExchangeCode(r.Context(), code, state.PKCEVerifier)
	if err != nil {
		s.logger.Error("Code exchange failed", "ip", clientIP, "error", err)
		instrumentation.RecordError(span, err)
		if s.auditor != nil {
			s.auditor.LogEvent(security.Event{
				Type:      security.EventCodeExchangeFailed,
				IPAddress: clientIP,
			})
		}
		s.recordCallback(r, false)
		if s.instrumentation != nil {
			s.instrumentation.Metrics().RecordCodeExchange(r.Context(), false)
		}
		s.renderErrorPage(w, "Could not complete the authorization. Please try again.")
		return
	}

	tokenCookie, err := s.tokenCookies.CreateCookie(oauth.NewTokenCookieFromToken(tokens))
	if err != nil {
		s.logger.Error("Failed to create token cookie", "error", err)
		instrumentation.RecordError(span, err)
		s.recordCallback(r, false)
		s.renderErrorPage(w, "Could not complete the authorization. Please try again.")
		return
	}

	if s.auditor != nil {
		s.auditor.LogEvent(security.Event{
			Type:      security.EventCodeExchangeCompleted,
			IPAddress: clientIP,
		})
	}
	s.recordCallback(r, true)
	if s.instrumentation != nil {
		s.instrumentation.Metrics().RecordCodeExchange(r.Context(), true)
	}

	s.logger.Info("OAuth flow completed, tokens sealed in cookie", "ip", clientIP)

	instrumentation.SetSpanSuccess(span)

	// The state cookie is single-use; clear it alongside setting tokens.
	http.SetCookie(w, s.stateCookies.ClearCookie())
	http.SetCookie(w, tokenCookie)
	s.renderSuccessPage(w)
}

func (s *Server) auditStateFailure(clientIP string, err error) {
	if s.auditor == nil {
		return
	}
	if errors.Is(err, oauth.ErrStateMismatch) {
		s.auditor.LogStateMismatch(clientIP)
		return
	}
	s.auditor.LogCookieRejected(clientIP, err.Error())
}

func (s *Server) recordCallback(r *http.Request, success bool) {
	if s.instrumentation != nil {
		s.instrumentation.Metrics().RecordCallbackProcessed(r.Context(), success)
	}
}
