package auth

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

// bearerPrefix is the exact Authorization scheme prefix. Scheme names are
// matched case-sensitively here: "bearer abc" is rejected. RFC 7235 permits
// case-insensitive schemes, but this server only ever talks to clients that
// send the canonical form, and the strict match keeps parsing unambiguous.
const bearerPrefix = "Bearer "

// ExtractBearerToken extracts the Bearer token from a request's Authorization
// header.
//
// Returns ErrNoToken when the header is absent and ErrInvalidTokenFormat when
// the scheme is wrong, the value is not valid UTF-8, or the token is empty.
//
// The remainder after "Bearer " is returned verbatim. In particular,
// "Bearer  abc" (double space) yields " abc" with the leading space intact.
// This is accepted behavior, not a bug to fix: the token is opaque and any
// normalization here would change which cache entry and which upstream
// credential the request maps to.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}

	if !utf8.ValidString(header) {
		return "", ErrInvalidTokenFormat
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidTokenFormat
	}

	token := header[len(bearerPrefix):]
	if token == "" {
		return "", ErrInvalidTokenFormat
	}

	return token, nil
}
