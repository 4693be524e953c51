// ABOUTME: Store interface and data types for babel-gateway persistence
// ABOUTME: Defines User, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when trying to create a user whose username is taken
var ErrDuplicateUser = errors.New("username already registered")

// User represents a registered account. Language is the ISO 639-1 code of the
// language messages should be translated into before delivery to this user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Language     string
	CreatedAt    time.Time
}

// Message represents a single relayed message between two users.
// Both the original text and the translation rendered for the receiver are
// kept; a message is immutable once saved.
type Message struct {
	ID                int64
	SenderID          int64
	ReceiverID        int64
	OriginalMessage   string
	TranslatedMessage string
	Timestamp         time.Time
}

// Store defines the interface for user and message persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*User, error)

	// Messages
	SaveMessage(ctx context.Context, msg *Message) error
	ListConversation(ctx context.Context, userID, otherID int64) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}
