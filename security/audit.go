package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// Event type constants for security audit logging.
const (
	// EventAuthFailure is logged when bearer authentication fails
	EventAuthFailure = "auth_failure"

	// EventTokenValidated is logged when a bearer token passes validation
	EventTokenValidated = "token_validated"

	// EventRateLimitExceeded is logged when a rate limit is exceeded
	EventRateLimitExceeded = "rate_limit_exceeded"

	// EventAuthorizationFlowStarted is logged when an OAuth flow is initiated
	EventAuthorizationFlowStarted = "authorization_flow_started"

	// EventStateMismatch is logged when the callback state parameter does not
	// match the CSRF token stored for the flow. Treated as a likely attack.
	EventStateMismatch = "state_mismatch"

	// EventCookieRejected is logged when an encrypted cookie fails decoding,
	// authentication, or its validity window
	EventCookieRejected = "cookie_rejected"

	// EventCodeExchangeFailed is logged when the authorization code exchange
	// with Miro fails
	EventCodeExchangeFailed = "code_exchange_failed"

	// EventCodeExchangeCompleted is logged when tokens are obtained from Miro
	EventCodeExchangeCompleted = "code_exchange_completed"
)

// Auditor handles security event logging with PII protection. User
// identifiers are hashed before they reach the log stream.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// Event represents a security audit event
type Event struct {
	Type      string
	UserID    string
	IPAddress string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII
func (a *Auditor) LogEvent(event Event) {
	if !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Info("security_audit",
		"event_type", event.Type,
		"user_id_hash", hashForLogging(event.UserID),
		"ip_address", event.IPAddress,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
}

// LogAuthFailure logs a bearer authentication failure
func (a *Auditor) LogAuthFailure(ipAddress, reason string) {
	a.LogEvent(Event{
		Type:      EventAuthFailure,
		IPAddress: ipAddress,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// LogTokenValidated logs a successful bearer token validation
func (a *Auditor) LogTokenValidated(userID, ipAddress string, cached bool) {
	a.LogEvent(Event{
		Type:      EventTokenValidated,
		UserID:    userID,
		IPAddress: ipAddress,
		Details: map[string]any{
			"cached": cached,
		},
	})
}

// LogRateLimitExceeded logs a rate limit violation
func (a *Auditor) LogRateLimitExceeded(ipAddress, userID string) {
	a.LogEvent(Event{
		Type:      EventRateLimitExceeded,
		UserID:    userID,
		IPAddress: ipAddress,
	})
}

// LogStateMismatch logs a CSRF state mismatch at the OAuth callback
func (a *Auditor) LogStateMismatch(ipAddress string) {
	a.LogEvent(Event{
		Type:      EventStateMismatch,
		IPAddress: ipAddress,
	})
}

// LogCookieRejected logs a rejected encrypted cookie
func (a *Auditor) LogCookieRejected(ipAddress, reason string) {
	a.LogEvent(Event{
		Type:      EventCookieRejected,
		IPAddress: ipAddress,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// hashForLogging creates a truncated SHA256 hash of sensitive data so events
// can be correlated without storing the raw value
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
