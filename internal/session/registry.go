package session

import (
	"log/slog"
	"sync"

	"github.com/SombathSOAN/krob-tele/internal/metrics"
)

// Registry owns every live session, keyed by chat id. It is handed explicitly
// to the components that need it; there is no package-level instance.
type Registry struct {
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		sessions: make(map[int64]*Session),
	}
}

func (r *Registry) Get(chatID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	return s, ok
}

// Create starts a fresh session for the chat, beginning at the phone step.
// An existing session for the same chat is torn down first, pollers included.
func (r *Registry) Create(chatID int64) *Session {
	r.mu.Lock()
	prev := r.sessions[chatID]
	s := newSession(chatID)
	r.sessions[chatID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	if prev != nil {
		prev.StopPollers()
		r.logger.Info("Replaced existing session", "chat_id", chatID)
	}
	metrics.SetActiveSessions(float64(count))
	return s
}

// Destroy cancels the session's pollers and removes it. Safe to call for a
// chat without a session.
func (r *Registry) Destroy(chatID int64) {
	r.mu.Lock()
	s, ok := r.sessions[chatID]
	delete(r.sessions, chatID)
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return
	}
	s.StopPollers()
	metrics.SetActiveSessions(float64(count))
	r.logger.Info("Session destroyed", "chat_id", chatID)
}

// Shutdown tears down every session. Called once on process exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[int64]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.StopPollers()
	}
	metrics.SetActiveSessions(0)
	r.logger.Info("All sessions destroyed", "count", len(all))
}
