package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/flyagile/miro-mcp-server/security"
)

const (
	// MiroAuthorizeURL is Miro's authorization endpoint.
	MiroAuthorizeURL = "https://miro.com/oauth/authorize"
	// MiroTokenURL is Miro's token endpoint.
	MiroTokenURL = "https://api.miro.com/v1/oauth/token"

	exchangeTimeout = 30 * time.Second
)

// Client drives the authorization code flow against Miro. PKCE is always
// on; the verifier travels in the caller's encrypted state cookie rather
// than any server-side store.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for the token exchange.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoints overrides the authorize and token URLs. Intended for tests.
func WithEndpoints(authURL, tokenURL string) ClientOption {
	return func(c *Client) {
		c.config.Endpoint = oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
}

// NewClient creates an OAuth client for the given Miro application.
func NewClient(clientID, clientSecret, redirectURI string, opts ...ClientOption) *Client {
	c := &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			// Miro takes client credentials in the form body. Pinning
			// the auth style also stops x/oauth2 from probing styles,
			// which would re-POST the single-use authorization code.
			Endpoint: oauth2.Endpoint{
				AuthURL:   MiroAuthorizeURL,
				TokenURL:  MiroTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: exchangeTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AuthorizationURL builds the Miro consent URL together with the fresh CSRF
// token and PKCE verifier that must be sealed into the state cookie before
// redirecting. The URL carries the S256 challenge derived from the verifier.
func (c *Client) AuthorizationURL() (authURL, csrfToken, pkceVerifier string) {
	csrfToken = security.GenerateRandomToken()
	pkceVerifier = oauth2.GenerateVerifier()

	authURL = c.config.AuthCodeURL(csrfToken, oauth2.S256ChallengeOption(pkceVerifier))
	return authURL, csrfToken, pkceVerifier
}

// ExchangeCode redeems an authorization code for tokens, proving possession
// of the PKCE verifier. A single attempt is made; the caller decides whether
// a failed exchange means restarting the flow.
func (c *Client) ExchangeCode(ctx context.Context, code, pkceVerifier string) (*oauth2.Token, error) {
	var opts []oauth2.AuthCodeOption
	if pkceVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(pkceVerifier))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	return token, nil
}

// RedirectURI returns the registered callback URL.
func (c *Client) RedirectURI() string {
	return c.config.RedirectURL
}
