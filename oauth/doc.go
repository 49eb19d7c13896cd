// Package oauth implements the browser-facing half of the Miro integration:
// the Authorization-Code + PKCE client used against Miro's authorization
// server, and the encrypted cookie codec that carries CSRF/PKCE state across
// the redirect round trip and the resulting token set back to the caller.
//
// All flow state lives in the caller's cookies, sealed with AES-256-GCM under
// keys derived from the server's master key. The server keeps no session
// store; losing a cookie aborts that flow and nothing else.
package oauth
