// Package auth implements the authentication core of the Miro MCP resource
// server: Bearer token extraction per RFC 6750, JWT claim validation with a
// bounded LRU cache, the auth error taxonomy, request-context identity
// propagation, and the RFC 9728 Protected Resource Metadata document.
//
// The validator deliberately does not verify JWT signatures. Tokens reach this
// server from Claude.ai, which has already validated them against Miro; this
// server only checks structure, expiry, and audience. Deployments outside a
// trusted-upstream topology must add signature verification (and the JWKS
// fetching that comes with it) before relying on these tokens.
package auth
