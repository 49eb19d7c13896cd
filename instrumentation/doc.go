// Package instrumentation provides OpenTelemetry metrics and tracing for
// the resource server. When disabled it wires no-op providers so the hot
// paths pay nothing for observability.
//
// Never record credential values (bearer tokens, authorization codes, PKCE
// verifiers) as attributes. Only metadata: result labels, endpoints, token
// presence flags.
package instrumentation
