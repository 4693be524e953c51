// Package gateway is the outer surface of babel-gateway: the HTTP API, the
// WebSocket relay endpoint, and server lifecycle.
//
// # Connection lifecycle
//
// Each WebSocket connection moves through a fixed set of states:
//
//	Connecting:    the path token is verified after the upgrade. A bad token
//	               closes the socket with a policy-violation code; no session
//	               is ever created.
//	Authenticated: a Session is registered; a second connection for the same
//	               user supersedes (and closes) the first.
//	Active:        the read pump dispatches frames synchronously to the
//	               message router, preserving per-connection order. Malformed
//	               frames close with an invalid-payload code; a persistence
//	               failure closes with an internal-error code.
//	Closing:       terminal. Every exit path closes the session and
//	               unregisters it (stale unregisters after a supersede are
//	               no-ops in the registry).
//
// A write pump per connection drains the session's frame channel and keeps
// the peer alive with pings.
//
// # HTTP API
//
//	POST /register          create an account (409 on duplicate username)
//	POST /token             exchange credentials for a bearer token
//	GET  /users/me          the caller's profile
//	GET  /users             paginated user list
//	GET  /messages/{id}     both-direction conversation history with a user
//	GET  /ws/{token}        the relay WebSocket
//	GET  /healthz           liveness
//	GET  /metrics           Prometheus exposition (config-gated)
//
// The credential endpoints are rate limited per client IP.
package gateway
