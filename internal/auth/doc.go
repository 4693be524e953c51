// Package auth provides authentication for babel-gateway.
//
// # Overview
//
// Users register with a username, password, and preferred language. Passwords
// are hashed with bcrypt; logins against unknown usernames still perform a
// bcrypt comparison against a fixed hash so response timing does not reveal
// which accounts exist.
//
// Successful logins are issued HS256-signed JWTs whose "sub" claim carries the
// username. Tokens are verified on every API request (Authorization: Bearer)
// and once per WebSocket connection at handshake time; the resolved Principal
// is then immutable for the lifetime of that request or connection.
//
// # Components
//
//   - Service: register/login/authenticate against the user store
//   - JWTVerifier: token generation and verification
//   - Middleware: HTTP bearer-token middleware
//   - WithPrincipal/FromContext: context propagation of the identity
package auth
