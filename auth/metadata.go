package auth

import (
	"fmt"
	"strings"
)

// ProtectedResourceMetadata represents OAuth 2.0 Protected Resource Metadata
// (RFC 9728). The document tells OAuth clients such as Claude.ai which
// authorization server issues tokens for this resource; in the Resource
// Server pattern that is Miro, not this server.
type ProtectedResourceMetadata struct {
	// Resource is the identifier for the protected resource (this server's base URL)
	Resource string `json:"resource"`

	// AuthorizationServers lists the authorization servers that can issue tokens for this resource
	AuthorizationServers []string `json:"authorization_servers"`

	// ScopesSupported lists the scopes understood by this resource
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// IntrospectionEndpoint is the token introspection endpoint, if any
	IntrospectionEndpoint string `json:"introspection_endpoint,omitempty"`

	// RevocationEndpoint is the token revocation endpoint, if any
	RevocationEndpoint string `json:"revocation_endpoint,omitempty"`
}

// NewMiroMetadata builds the metadata document for the Miro Resource Server
// pattern: Miro is the authorization server, and this server only validates
// the tokens it issues.
func NewMiroMetadata(baseURL string) *ProtectedResourceMetadata {
	return &ProtectedResourceMetadata{
		Resource:              baseURL,
		AuthorizationServers:  []string{"https://miro.com"},
		ScopesSupported:       []string{"boards:read", "boards:write"},
		IntrospectionEndpoint: "https://api.miro.com/v2/oauth/token/introspect",
		// Miro does not expose a public revocation endpoint
		RevocationEndpoint: "",
	}
}

// Validate checks the document for completeness before it is served
func (m *ProtectedResourceMetadata) Validate() error {
	if m.Resource == "" {
		return fmt.Errorf("resource URL cannot be empty")
	}

	if len(m.AuthorizationServers) == 0 {
		return fmt.Errorf("at least one authorization server must be specified")
	}

	if !strings.HasPrefix(m.Resource, "https://") && !strings.HasPrefix(m.Resource, "http://") {
		return fmt.Errorf("resource URL must be a valid HTTP(S) URL")
	}

	return nil
}
