package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// ErrDuplicateSession means the transport layer handed out the same
// session id twice. A well-formed transport never does this, so the
// registration is rejected rather than merged.
var ErrDuplicateSession = errors.New("duplicate session")

// Session is one active connection. The registry owns the record;
// everything else refers to it by id.
type Session struct {
	ID        domain.SessionID
	User      domain.User
	Room      domain.RoomID // empty while the session occupies no room
	CreatedAt time.Time

	conn   SignalConnection
	cancel context.CancelFunc
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*Session
	byUser   map[domain.UserID]map[domain.SessionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.SessionID]*Session),
		byUser:   make(map[domain.UserID]map[domain.SessionID]struct{}),
	}
}

func (r *Registry) Register(sid domain.SessionID, user domain.User, conn SignalConnection, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; ok {
		return ErrDuplicateSession
	}
	r.sessions[sid] = &Session{
		ID:        sid,
		User:      user,
		CreatedAt: time.Now().UTC(),
		conn:      conn,
		cancel:    cancel,
	}
	if r.byUser[user.ID] == nil {
		r.byUser[user.ID] = make(map[domain.SessionID]struct{})
	}
	r.byUser[user.ID][sid] = struct{}{}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(user.ID)).Msg("session registered")
	return nil
}

// Unregister removes and returns the session record. Absent sessions
// are a no-op so double-disconnect events are tolerated.
func (r *Registry) Unregister(sid domain.SessionID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, sid)
	if set, ok := r.byUser[s.User.ID]; ok {
		delete(set, sid)
		if len(set) == 0 {
			delete(r.byUser, s.User.ID)
		}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("session unregistered")
	return *s, true
}

func (r *Registry) Get(sid domain.SessionID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// LookupByUser supports multi-session fan-out: one user may hold any
// number of concurrent connections.
func (r *Registry) LookupByUser(uid domain.UserID) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.byUser[uid]
	if !ok {
		return nil
	}
	out := make([]domain.SessionID, 0, len(set))
	for sid := range set {
		out = append(out, sid)
	}
	return out
}

func (r *Registry) AllSessions() []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SessionID, 0, len(r.sessions))
	for sid := range r.sessions {
		out = append(out, sid)
	}
	return out
}

func (r *Registry) Conn(sid domain.SessionID) (SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok || s.conn == nil {
		return nil, false
	}
	return s.conn, true
}

func (r *Registry) SetRoom(sid domain.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return false
	}
	s.Room = room
	return true
}

func (r *Registry) ClearRoom(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		s.Room = ""
	}
}

// Cancel tears down the session's context, which unwinds its transport
// goroutines and triggers the regular disconnect path.
func (r *Registry) Cancel(sid domain.SessionID) bool {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
