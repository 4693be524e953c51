// ABOUTME: Represents a single live user connection and its outbound frame channel
// ABOUTME: Close is idempotent; pushes after close fail without panicking

package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Push errors
var (
	ErrSessionClosed  = errors.New("session closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// sendBufferSize is the number of outbound frames buffered per session before
// pushes start failing. A full buffer means the peer has stopped reading.
const sendBufferSize = 32

// Session is one live connection for a user. The outbound channel carries
// JSON-encoded delivery frames consumed by the connection's write pump.
type Session struct {
	UserID int64
	ConnID string // unique per physical connection; distinguishes superseded sessions

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a Session for the given user with a fresh connection ID.
func New(userID int64) *Session {
	return &Session{
		UserID: userID,
		ConnID: uuid.New().String(),
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// Frames returns the outbound frame channel for the write pump.
func (s *Session) Frames() <-chan []byte {
	return s.send
}

// Done is closed when the session has been closed. The write pump uses this
// to terminate; senders observe it to fail pushes.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// Close marks the session closed. Safe to call multiple times and from
// multiple goroutines; only the first call has any effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

// TrySend pushes a frame onto the outbound channel without blocking.
// Returns ErrSessionClosed after Close, or ErrSendBufferFull when the peer
// is not draining its buffer.
func (s *Session) TrySend(frame []byte) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- frame:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	default:
		return ErrSendBufferFull
	}
}
