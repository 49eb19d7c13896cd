package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flyagile/miro-mcp-server/auth"
	"github.com/flyagile/miro-mcp-server/security"
)

// ValidateToken is the bearer auth gate. It distinguishes two challenge
// shapes per RFC 6750: a request that never presented a usable token gets a
// bare realm challenge, while a token that was presented and rejected gets
// error="invalid_token" so the client knows to discard it.
func (s *Server) ValidateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := security.GetClientIP(r, s.trustProxy, s.trustedProxyCount)

		if s.checkRateLimit(w, r, clientIP) {
			return
		}

		token, err := auth.ExtractBearerToken(r)
		if err != nil {
			s.logger.Warn("Bearer token extraction failed", "ip", clientIP, "error", err)
			if s.auditor != nil {
				s.auditor.LogAuthFailure(clientIP, err.Error())
			}
			s.writeChallenge(w, false)
			return
		}

		userInfo, cached, err := s.validator.Validate(token)
		if err != nil {
			s.logger.Warn("Token validation failed", "ip", clientIP, "error", err)
			if s.auditor != nil {
				s.auditor.LogAuthFailure(clientIP, err.Error())
			}
			if s.instrumentation != nil {
				s.instrumentation.Metrics().RecordTokenValidation(r.Context(), validationResult(err), false)
			}
			s.writeChallenge(w, true)
			return
		}

		if s.auditor != nil {
			s.auditor.LogTokenValidated(userInfo.UserID, clientIP, cached)
		}
		if s.instrumentation != nil {
			s.instrumentation.Metrics().RecordTokenValidation(r.Context(), "valid", cached)
		}

		ctx := auth.ContextWithUserInfo(r.Context(), userInfo)
		ctx = auth.ContextWithAccessToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// checkRateLimit returns true when the request was rejected.
func (s *Server) checkRateLimit(w http.ResponseWriter, r *http.Request, clientIP string) bool {
	if s.rateLimiter == nil || s.rateLimiter.Allow(clientIP) {
		return false
	}

	s.logger.Warn("Rate limit exceeded", "ip", clientIP)
	if s.auditor != nil {
		s.auditor.LogRateLimitExceeded(clientIP, "")
	}
	if s.instrumentation != nil {
		s.instrumentation.Metrics().RecordRateLimitExceeded(r.Context(), "ip")
	}

	security.SetSecurityHeaders(w, "")
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	return true
}

// writeChallenge writes the 401 response. tokenRejected selects the
// error="invalid_token" form of the challenge.
func (s *Server) writeChallenge(w http.ResponseWriter, tokenRejected bool) {
	security.SetSecurityHeaders(w, "")

	challenge := fmt.Sprintf("Bearer realm=%q", Realm)
	if tokenRejected {
		challenge = fmt.Sprintf("Bearer realm=%q, error=%q", Realm, "invalid_token")
	}

	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// validationResult maps a validation error to a metric label.
func validationResult(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidTokenFormat):
		return "invalid"
	default:
		return "rejected"
	}
}
