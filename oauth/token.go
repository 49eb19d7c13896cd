package oauth

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// OAuthTokenCookie is the access/refresh token set persisted in the caller's
// browser after a successful code exchange. The server holds no copy; the
// cookie is the only place these tokens live, and it is only ever replaced
// wholesale, never partially updated.
type OAuthTokenCookie struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// NewOAuthTokenCookie builds a token payload whose expiry is expiresIn from
// now
func NewOAuthTokenCookie(accessToken, refreshToken string, expiresIn time.Duration) OAuthTokenCookie {
	return OAuthTokenCookie{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(expiresIn).Unix(),
	}
}

// NewTokenCookieFromToken builds the payload from an exchanged token. Miro
// tokens always carry an expiry, but a token without one maps to ExpiresAt 0,
// meaning no expiry, rather than the Unix zero time.
func NewTokenCookieFromToken(t *oauth2.Token) OAuthTokenCookie {
	cookie := OAuthTokenCookie{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		cookie.ExpiresAt = t.Expiry.Unix()
	}
	return cookie
}

// Expired reports whether the access token's own expiry has passed
func (c *OAuthTokenCookie) Expired(now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= c.ExpiresAt
}

// TokenCookieManager seals the token set into the caller's browser session.
// Unlike state cookies there is no fixed window; the cookie lives as long as
// the access token it carries.
type TokenCookieManager struct {
	codec  *cookieCodec
	secure bool
}

// NewTokenCookieManager creates a manager sealing under a key derived from
// masterKey, independent of the state cookie key.
func NewTokenCookieManager(masterKey []byte, secure bool) (*TokenCookieManager, error) {
	codec, err := newCookieCodec(masterKey, "oauth-token-cookie")
	if err != nil {
		return nil, err
	}

	return &TokenCookieManager{
		codec:  codec,
		secure: secure,
	}, nil
}

// CreateCookie seals the token set into an http.Cookie whose lifetime
// follows the access token's expiry
func (m *TokenCookieManager) CreateCookie(tokens OAuthTokenCookie) (*http.Cookie, error) {
	value, err := m.codec.encode(tokens)
	if err != nil {
		return nil, err
	}

	maxAge := 0
	if tokens.ExpiresAt > 0 {
		if remaining := time.Until(time.Unix(tokens.ExpiresAt, 0)); remaining > 0 {
			maxAge = int(remaining.Seconds())
		}
	}

	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode opens a sealed token cookie. Expiry is not enforced here; callers
// that care should check Expired against the payload, since a token set with
// a live refresh token is still useful past the access token's expiry.
func (m *TokenCookieManager) Decode(cookieValue string) (*OAuthTokenCookie, error) {
	var tokens OAuthTokenCookie
	if err := m.codec.decode(cookieValue, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}
