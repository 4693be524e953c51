// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Covers user CRUD, message persistence, and conversation queries

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// createTestUser inserts a user and returns it with the assigned ID.
func createTestUser(t *testing.T, store *SQLiteStore, username, language string) *User {
	t.Helper()
	user := &User{
		Username:     username,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Language:     language,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestStore_CreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "alice", "en")
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, "en", retrieved.Language)
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "alice", "en")

	dup := &User{Username: "alice", PasswordHash: "x", Language: "es"}
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestStore_GetUserByUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, store, "bob", "es")

	retrieved, err := store.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUser(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListUsers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "alice", "en")
	createTestUser(t, store, "bob", "es")
	createTestUser(t, store, "carol", "fr")

	users, err := store.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)

	// Pagination
	users, err = store.ListUsers(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
}

func TestStore_SaveMessage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice", "en")
	bob := createTestUser(t, store, "bob", "es")

	msg := &Message{
		SenderID:          alice.ID,
		ReceiverID:        bob.ID,
		OriginalMessage:   "hello",
		TranslatedMessage: "hola",
	}
	require.NoError(t, store.SaveMessage(ctx, msg))

	assert.NotZero(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestStore_ListConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice", "en")
	bob := createTestUser(t, store, "bob", "es")
	carol := createTestUser(t, store, "carol", "fr")

	base := time.Now().UTC()
	save := func(sender, receiver int64, text string, at time.Time) {
		t.Helper()
		require.NoError(t, store.SaveMessage(ctx, &Message{
			SenderID:          sender,
			ReceiverID:        receiver,
			OriginalMessage:   text,
			TranslatedMessage: text,
			Timestamp:         at,
		}))
	}

	save(alice.ID, bob.ID, "first", base)
	save(bob.ID, alice.ID, "second", base.Add(time.Second))
	save(alice.ID, bob.ID, "third", base.Add(2*time.Second))
	// Noise from an unrelated conversation
	save(alice.ID, carol.ID, "other", base.Add(time.Second))

	messages, err := store.ListConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].OriginalMessage)
	assert.Equal(t, "second", messages[1].OriginalMessage)
	assert.Equal(t, "third", messages[2].OriginalMessage)

	// Same result regardless of argument order
	reversed, err := store.ListConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, reversed, 3)
	assert.Equal(t, messages[0].ID, reversed[0].ID)
}

func TestStore_ListConversation_Empty(t *testing.T) {
	store := setupTestStore(t)

	messages, err := store.ListConversation(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	createTestUser(t, store, "alice", "en")
	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "en", user.Language)
}
