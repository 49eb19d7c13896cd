// Package server wires the HTTP surface of the resource server: the bearer
// auth gate in front of the MCP endpoint, the OAuth authorization and
// callback endpoints, protected resource metadata, and health checking.
//
// Cross-cutting components (rate limiter, auditor, instrumentation) are
// injected and optional; a nil component disables that concern without
// branching in callers.
package server
