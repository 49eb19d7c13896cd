package oauth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"
)

// stateCookieTTL bounds how long a state cookie stays valid. It only needs
// to span the redirect round trip through Miro's consent screen.
const stateCookieTTL = 10 * time.Minute

// State cookie errors, distinct from ErrCookieInvalid so callers can tell a
// structurally sound but stale or mismatched cookie from a corrupt one.
var (
	// ErrStateExpired indicates the state cookie is older than its window
	ErrStateExpired = errors.New("oauth state cookie expired")

	// ErrStateMismatch indicates the state query parameter returned by the
	// authorization server does not equal the stored CSRF token
	ErrStateMismatch = errors.New("state parameter does not match stored CSRF token")
)

// OAuthCookieState is the payload persisted across the authorization
// redirect: the CSRF token embedded in the authorization URL and the PKCE
// verifier needed for the code exchange. Consumed exactly once at callback.
type OAuthCookieState struct {
	CSRFToken    string `json:"csrf_token"`
	PKCEVerifier string `json:"pkce_verifier"`
	CreatedAt    int64  `json:"created_at"`
}

// StateCookieManager seals OAuth flow state into the caller's cookie at flow
// start and validates it at callback.
type StateCookieManager struct {
	codec  *cookieCodec
	secure bool

	// now is the clock source, replaceable in tests
	now func() time.Time
}

// NewStateCookieManager creates a manager sealing under a key derived from
// masterKey. secure controls the cookie's Secure attribute and should be
// true whenever the server is reached over HTTPS.
func NewStateCookieManager(masterKey []byte, secure bool) (*StateCookieManager, error) {
	codec, err := newCookieCodec(masterKey, "oauth-state-cookie")
	if err != nil {
		return nil, err
	}

	return &StateCookieManager{
		codec:  codec,
		secure: secure,
		now:    time.Now,
	}, nil
}

// NewState builds fresh flow state stamped with the current time
func (m *StateCookieManager) NewState(csrfToken, pkceVerifier string) OAuthCookieState {
	return OAuthCookieState{
		CSRFToken:    csrfToken,
		PKCEVerifier: pkceVerifier,
		CreatedAt:    m.now().Unix(),
	}
}

// CreateCookie seals the state into an http.Cookie ready for Set-Cookie
func (m *StateCookieManager) CreateCookie(state OAuthCookieState) (*http.Cookie, error) {
	value, err := m.codec.encode(state)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     StateCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// RetrieveAndValidate decodes the state cookie and checks that returnedState
// equals the stored CSRF token. This single comparison is the entire CSRF
// defense: it binds the browser session that started the flow to the one
// completing it. Expiry and mismatch both fail closed.
func (m *StateCookieManager) RetrieveAndValidate(cookieValue, returnedState string) (*OAuthCookieState, error) {
	var state OAuthCookieState
	if err := m.codec.decode(cookieValue, &state); err != nil {
		return nil, err
	}

	if m.now().Sub(time.Unix(state.CreatedAt, 0)) > stateCookieTTL {
		return nil, ErrStateExpired
	}

	if subtle.ConstantTimeCompare([]byte(returnedState), []byte(state.CSRFToken)) != 1 {
		return nil, ErrStateMismatch
	}

	return &state, nil
}

// ClearCookie returns a cookie that removes the state cookie from the
// browser once the flow has consumed it.
func (m *StateCookieManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
