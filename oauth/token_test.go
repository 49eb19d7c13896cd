package oauth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenCookieRoundTrip(t *testing.T) {
	m, err := NewTokenCookieManager(testMasterKey(t), true)
	if err != nil {
		t.Fatalf("NewTokenCookieManager() error = %v", err)
	}

	tokens := NewOAuthTokenCookie("access-value", "refresh-value", time.Hour)
	cookie, err := m.CreateCookie(tokens)
	if err != nil {
		t.Fatalf("CreateCookie() error = %v", err)
	}

	got, err := m.Decode(cookie.Value)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.AccessToken != "access-value" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "access-value")
	}
	if got.RefreshToken != "refresh-value" {
		t.Errorf("RefreshToken = %q, want %q", got.RefreshToken, "refresh-value")
	}
	if got.ExpiresAt != tokens.ExpiresAt {
		t.Errorf("ExpiresAt = %d, want %d", got.ExpiresAt, tokens.ExpiresAt)
	}
}

func TestNewTokenCookieFromToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	got := NewTokenCookieFromToken(&oauth2.Token{
		AccessToken:  "access-value",
		RefreshToken: "refresh-value",
		Expiry:       expiry,
	})
	if got.AccessToken != "access-value" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "access-value")
	}
	if got.ExpiresAt != expiry.Unix() {
		t.Errorf("ExpiresAt = %d, want %d", got.ExpiresAt, expiry.Unix())
	}
}

func TestNewTokenCookieFromTokenNoExpiry(t *testing.T) {
	m, err := NewTokenCookieManager(testMasterKey(t), true)
	if err != nil {
		t.Fatalf("NewTokenCookieManager() error = %v", err)
	}

	tokens := NewTokenCookieFromToken(&oauth2.Token{
		AccessToken:  "access-value",
		RefreshToken: "refresh-value",
	})
	if tokens.ExpiresAt != 0 {
		t.Fatalf("ExpiresAt = %d, want 0 for a token without expiry", tokens.ExpiresAt)
	}
	if tokens.Expired(time.Now()) {
		t.Error("token without expiry reported as expired")
	}

	cookie, err := m.CreateCookie(tokens)
	if err != nil {
		t.Fatalf("CreateCookie() error = %v", err)
	}
	if cookie.MaxAge != 0 {
		t.Errorf("MaxAge = %d, want 0 (session cookie) for a token without expiry", cookie.MaxAge)
	}
}

func TestTokenCookieAttributes(t *testing.T) {
	m, err := NewTokenCookieManager(testMasterKey(t), true)
	if err != nil {
		t.Fatalf("NewTokenCookieManager() error = %v", err)
	}

	cookie, err := m.CreateCookie(NewOAuthTokenCookie("access", "refresh", time.Hour))
	if err != nil {
		t.Fatalf("CreateCookie() error = %v", err)
	}

	if cookie.Name != TokenCookieName {
		t.Errorf("Name = %q, want %q", cookie.Name, TokenCookieName)
	}
	if !cookie.HttpOnly {
		t.Error("cookie is not HttpOnly")
	}
	if !cookie.Secure {
		t.Error("cookie is not Secure")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}

	// MaxAge follows the access token's remaining lifetime.
	if cookie.MaxAge <= 0 || cookie.MaxAge > int(time.Hour.Seconds()) {
		t.Errorf("MaxAge = %d, want within (0, 3600]", cookie.MaxAge)
	}
}

func TestTokenCookieTampered(t *testing.T) {
	m, err := NewTokenCookieManager(testMasterKey(t), true)
	if err != nil {
		t.Fatalf("NewTokenCookieManager() error = %v", err)
	}

	cookie, err := m.CreateCookie(NewOAuthTokenCookie("access", "refresh", time.Hour))
	if err != nil {
		t.Fatalf("CreateCookie() error = %v", err)
	}

	tampered := []byte(cookie.Value)
	tampered[0] ^= 0x01

	if _, err := m.Decode(string(tampered)); !errors.Is(err, ErrCookieInvalid) {
		t.Errorf("Decode() tampered error = %v, want ErrCookieInvalid", err)
	}
}

func TestOAuthTokenCookieExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"future expiry", now.Add(time.Hour).Unix(), false},
		{"past expiry", now.Add(-time.Hour).Unix(), true},
		{"expiry equals now", now.Unix(), true},
		{"zero means no expiry", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := OAuthTokenCookie{AccessToken: "a", ExpiresAt: tt.expiresAt}
			if got := c.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
