// Package miro is a minimal client for the Miro REST API v2, covering the
// board operations the MCP tools expose. Every call authenticates with a
// caller-supplied bearer token; the client itself holds no credentials.
package miro
