// Package mcp exposes Miro board operations as MCP tools over the
// streamable HTTP transport. Handlers pull the caller's Miro access token
// from the request context placed there by the bearer middleware; the MCP
// layer itself never sees raw Authorization headers.
package mcp
