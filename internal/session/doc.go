// Package session tracks which users are currently reachable over a live
// WebSocket connection.
//
// # Overview
//
// The Registry maps each user ID to at most one Session. A Session wraps the
// outbound frame channel consumed by its connection's write pump; the
// Registry never touches the socket itself.
//
// # Concurrency
//
// One RWMutex guards the map; Register, Unregister, Lookup, and SendTo are
// individually atomic with respect to each other, and the lock is never held
// across an I/O call. Session.Close is guarded by sync.Once so a superseding
// registration and a concurrent disconnect cannot double-close a channel.
//
// # Lifecycle rules
//
//   - Register is last-writer-wins: a second connection for the same user
//     replaces the first, and the replaced session is closed exactly once.
//   - Unregister only removes the mapping when the caller's session is still
//     the registered one, so a slow disconnect of a superseded connection
//     cannot evict its replacement.
//   - A failed push inside SendTo marks the session dead and removes it
//     best-effort; the error never reaches the sender's task.
package session
