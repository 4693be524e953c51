// ABOUTME: Registry maps user IDs to their single live session, guarding all
// ABOUTME: access with one mutex; register is last-writer-wins with exactly-once close

package session

import (
	"log/slog"
	"sync"

	"github.com/2389/babel-gateway/internal/metrics"
)

// SendOutcome describes the result of a SendTo push.
type SendOutcome int

const (
	// SendDelivered means the frame was queued on a live session.
	SendDelivered SendOutcome = iota
	// SendNoSession means the user has no registered session.
	SendNoSession
	// SendFailed means the push failed and the dead session was evicted.
	SendFailed
)

// Registry is the process-wide source of truth for which users are currently
// reachable and through which session. All operations are individually atomic;
// the lock is never held across I/O. The registry owns the active-session
// metrics so that every path into and out of the map is counted, including
// its own eviction of dead sessions.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[int64]*Session
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger, collector *metrics.Collector) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions:  make(map[int64]*Session),
		logger:    logger.With("component", "registry"),
		collector: collector,
	}
}

// Register installs the session as the live connection for its user.
// If the user already has a registered session it is atomically replaced and
// closed exactly once (last-writer-wins); the displaced session is returned
// so callers can observe the supersede, or nil if there was none.
func (r *Registry) Register(s *Session) *Session {
	r.mu.Lock()
	old := r.sessions[s.UserID]
	r.sessions[s.UserID] = s
	total := len(r.sessions)
	r.mu.Unlock()

	if old != nil {
		// Close outside the lock; Close is idempotent so a concurrent
		// disconnect of the old connection cannot double-close it.
		old.Close()
		r.collector.SessionSuperseded()
		r.collector.SessionUnregistered()
		r.logger.Info("session superseded",
			"user_id", s.UserID,
			"old_conn_id", old.ConnID,
			"new_conn_id", s.ConnID,
		)
	}

	r.collector.SessionRegistered()
	r.logger.Info("session registered",
		"user_id", s.UserID,
		"conn_id", s.ConnID,
		"total_sessions", total,
	)
	return old
}

// Unregister removes the mapping for the session's user only if the
// currently registered session is this same physical connection. A stale
// disconnect from a superseded connection is a no-op. Reports whether the
// mapping was removed.
func (r *Registry) Unregister(s *Session) bool {
	r.mu.Lock()
	cur, ok := r.sessions[s.UserID]
	if ok && cur.ConnID == s.ConnID {
		delete(r.sessions, s.UserID)
	} else {
		ok = false
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.collector.SessionUnregistered()
		r.logger.Info("session unregistered",
			"user_id", s.UserID,
			"conn_id", s.ConnID,
			"total_sessions", total,
		)
	}
	return ok
}

// Lookup returns the currently registered session for the user, if any.
func (r *Registry) Lookup(userID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// SendTo pushes a frame to the user's live session if one is registered.
// Transport-level delivery is not guaranteed by this layer. A failed push is
// treated as evidence the channel is dead: it is logged, the session is
// closed and unregistered best-effort, and SendFailed is reported instead of
// an error.
func (r *Registry) SendTo(userID int64, frame []byte) SendOutcome {
	s, ok := r.Lookup(userID)
	if !ok {
		return SendNoSession
	}

	if err := s.TrySend(frame); err != nil {
		r.logger.Warn("push failed, dropping session",
			"user_id", userID,
			"conn_id", s.ConnID,
			"error", err,
		)
		s.Close()
		r.Unregister(s)
		return SendFailed
	}
	return SendDelivered
}

// Len returns the number of currently registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
