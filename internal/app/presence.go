package app

import (
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

// presenceEntry exists only while the user has at least one live
// session. Sessions are tracked as a set rather than a counter so a
// duplicated mark for the same session cannot skew the count.
type presenceEntry struct {
	sessions map[domain.SessionID]struct{}
	lastSeen time.Time
}

// PresenceTracker collapses multi-session users to a single online
// bit. Transitions are atomic per user: rapid reconnects never produce
// broadcast storms.
type PresenceTracker struct {
	mu      sync.Mutex
	entries map[domain.UserID]*presenceEntry
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{entries: make(map[domain.UserID]*presenceEntry)}
}

// MarkOnline reports true only on the 0->1 session transition.
func (p *PresenceTracker) MarkOnline(uid domain.UserID, sid domain.SessionID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[uid]
	if !ok {
		e = &presenceEntry{sessions: make(map[domain.SessionID]struct{})}
		p.entries[uid] = e
	}
	e.sessions[sid] = struct{}{}
	e.lastSeen = time.Now().UTC()
	return !ok
}

// MarkOffline reports true only when the user's last session went away.
func (p *PresenceTracker) MarkOffline(uid domain.UserID, sid domain.SessionID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[uid]
	if !ok {
		return false
	}
	delete(e.sessions, sid)
	if len(e.sessions) > 0 {
		return false
	}
	delete(p.entries, uid)
	return true
}

func (p *PresenceTracker) IsOnline(uid domain.UserID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[uid]
	return ok
}

// OnlineAmong filters the given users down to those currently online,
// preserving order.
func (p *PresenceTracker) OnlineAmong(uids []domain.UserID) []domain.UserID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.UserID
	for _, uid := range uids {
		if _, ok := p.entries[uid]; ok {
			out = append(out, uid)
		}
	}
	return out
}
