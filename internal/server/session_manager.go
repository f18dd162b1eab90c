package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
)

// DefaultSessionTimeout is how long an idle session stays valid.
const DefaultSessionTimeout = 24 * time.Hour

const sessionCleanupInterval = 10 * time.Minute

var (
	// ErrInvalidSessionID is returned for IDs this manager never issued.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrSessionExpired is returned for sessions idle past the timeout.
	ErrSessionExpired = errors.New("session expired")
)

// sessionInfo tracks session metadata for cleanup
type sessionInfo struct {
	created    time.Time
	lastAccess time.Time
}

// SessionIDManager issues Mcp-Session-Id values for the streamable HTTP
// transport. It implements mcp-go's SessionIdManager: sessions are random
// UUIDs, touched on every validated request, and expire after an idle
// timeout. Terminated IDs are remembered until the next cleanup so that a
// client reusing one is told the session is gone.
type SessionIDManager struct {
	sessions       map[string]*sessionInfo
	terminated     map[string]time.Time
	mu             sync.Mutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	stopOnce       sync.Once
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
	now            func() time.Time
}

// NewSessionIDManager creates a new session ID manager with default logger
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(DefaultSessionTimeout, slog.Default())
}

// NewSessionIDManagerWithTimeout creates a new session ID manager with custom timeout
func NewSessionIDManagerWithTimeout(timeout time.Duration) *SessionIDManager {
	return NewSessionIDManagerWithLogger(timeout, slog.Default())
}

// NewSessionIDManagerWithLogger creates a new session ID manager with custom timeout and logger
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		terminated:     make(map[string]time.Time),
		cleanupTicker:  time.NewTicker(sessionCleanupInterval),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
		now:            time.Now,
	}

	// Start cleanup goroutine
	go m.cleanupExpiredSessions()

	return m
}

// SetMetrics makes the manager maintain the active_sessions gauge.
func (m *SessionIDManager) SetMetrics(metrics *instrumentation.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// Generate issues a new session ID.
func (m *SessionIDManager) Generate() string {
	id := uuid.NewString()

	m.mu.Lock()
	now := m.now()
	m.sessions[id] = &sessionInfo{created: now, lastAccess: now}
	metrics := m.metrics
	m.mu.Unlock()

	metrics.IncrementActiveSessions(context.Background())
	m.logger.Debug("Session created", "session_id", id)
	return id
}

// Validate checks a session ID presented by a client. isTerminated is true
// when the session was explicitly ended.
func (m *SessionIDManager) Validate(sessionID string) (isTerminated bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.terminated[sessionID]; ok {
		return true, nil
	}
	info, ok := m.sessions[sessionID]
	if !ok {
		return false, ErrInvalidSessionID
	}
	now := m.now()
	if now.Sub(info.lastAccess) > m.sessionTimeout {
		m.expireLocked(sessionID)
		return false, ErrSessionExpired
	}
	info.lastAccess = now
	return false, nil
}

// Terminate ends a session on the client's request. Unknown IDs are
// accepted so that DELETE is idempotent.
func (m *SessionIDManager) Terminate(sessionID string) (isNotAllowed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; ok {
		m.expireLocked(sessionID)
		m.terminated[sessionID] = m.now()
		m.logger.Debug("Session terminated", "session_id", sessionID)
	}
	return false, nil
}

// expireLocked drops a live session. m.mu must be held.
func (m *SessionIDManager) expireLocked(sessionID string) {
	delete(m.sessions, sessionID)
	m.metrics.DecrementActiveSessions(context.Background())
}

// ListSessions returns all active session IDs
func (m *SessionIDManager) ListSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// Cleanup removes idle sessions and forgets terminated IDs older than the
// timeout. It returns how many live sessions expired.
func (m *SessionIDManager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	expired := 0
	for sessionID, info := range m.sessions {
		if now.Sub(info.lastAccess) > m.sessionTimeout {
			m.expireLocked(sessionID)
			expired++
		}
	}
	for sessionID, at := range m.terminated {
		if now.Sub(at) > m.sessionTimeout {
			delete(m.terminated, sessionID)
		}
	}
	return expired
}

// cleanupExpiredSessions periodically removes expired sessions
func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			if n := m.Cleanup(); n > 0 {
				m.logger.Info("Cleaned up expired sessions", "count", n)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine. It is safe to call more than once.
func (m *SessionIDManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}
