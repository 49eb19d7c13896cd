package oauth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flyagile/miro-mcp-server/security"
)

// Cookie names. The values are opaque sealed blobs; these names are the only
// externally meaningful part of the cookie wire format.
const (
	// StateCookieName carries CSRF + PKCE state across the OAuth redirect
	StateCookieName = "miro_oauth_state"

	// TokenCookieName carries the access/refresh token set after a
	// successful code exchange
	TokenCookieName = "miro_oauth_token"
)

// ErrCookieInvalid indicates cookie material that failed decoding or
// authentication: malformed base64, a bad authentication tag, or a payload
// that is not the expected JSON shape. It is deliberately not an auth error;
// a forged cookie is a different trust failure than a bad bearer token.
var ErrCookieInvalid = errors.New("cookie value is malformed or fails authentication")

// cookieCodec seals JSON payloads into opaque cookie values and back.
// Stateless and safe under unlimited concurrency.
type cookieCodec struct {
	sealer *security.Sealer
}

// newCookieCodec derives a purpose-specific key from the master key so state
// and token cookies are sealed under independent keys.
func newCookieCodec(masterKey []byte, purpose string) (*cookieCodec, error) {
	key, err := security.DeriveKey(masterKey, purpose)
	if err != nil {
		return nil, err
	}

	sealer, err := security.NewSealer(key)
	if err != nil {
		return nil, err
	}

	return &cookieCodec{sealer: sealer}, nil
}

// encode seals a payload into an opaque cookie value
func (c *cookieCodec) encode(payload any) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cookie payload: %w", err)
	}
	return c.sealer.Seal(plaintext)
}

// decode opens a sealed cookie value into payload. Every failure mode,
// from bad encoding to a flipped ciphertext bit, maps to ErrCookieInvalid.
func (c *cookieCodec) decode(value string, payload any) error {
	plaintext, err := c.sealer.Open(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCookieInvalid, err)
	}

	if err := json.Unmarshal(plaintext, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrCookieInvalid, err)
	}

	return nil
}
