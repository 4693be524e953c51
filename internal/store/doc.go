// Package store provides persistence for babel-gateway.
//
// # Overview
//
// The Store interface defines user and message persistence. The only
// implementation is SQLiteStore, backed by modernc.org/sqlite (pure Go, no
// CGO), with the schema created automatically on first open.
//
// # Entities
//
//   - User: a registered account with a bcrypt password hash and a preferred
//     language code. Usernames are unique.
//   - Message: one relayed message carrying both the original text and the
//     translation rendered for the receiver. Messages are immutable once
//     saved and are persisted whether or not the receiver was online.
//
// # Conversations
//
// ListConversation returns the merged, timestamp-ordered history between two
// users in both directions. This backs the GET /messages/{id} endpoint and is
// how offline recipients catch up.
//
// # Errors
//
// Lookups return ErrNotFound for missing rows. CreateUser returns
// ErrDuplicateUser on a username collision; callers map this to a user-facing
// conflict error.
package store
