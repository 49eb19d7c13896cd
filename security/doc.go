// Package security provides the security primitives used across the server:
// authenticated cookie encryption with per-purpose key derivation, per-IP
// rate limiting, request ID generation, client IP extraction, security
// response headers, and audit logging with PII hashing.
package security
