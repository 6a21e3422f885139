package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

var (
	// ErrUnknownRoom means an offer was submitted for a room the user
	// never joined.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrNoOpenOffer means no unanswered offer matches the offerer.
	ErrNoOpenOffer = errors.New("no open offer")
	// ErrAlreadyAnswered means a faster peer already bound an answer.
	ErrAlreadyAnswered = errors.New("offer already answered")
	// ErrNoNegotiation means a candidate matched no negotiation side.
	ErrNoNegotiation = errors.New("no matching negotiation")
)

// roomState is one room's roster plus its pending negotiations. Each
// room carries its own lock so independent rooms never contend. closed
// marks a state that was already removed from the store map; callers
// that looked it up before the removal must not mutate it.
type roomState struct {
	mu           sync.Mutex
	closed       bool
	participants []domain.UserID
	negotiations []*domain.Negotiation
}

// RoomStore owns every Room and Negotiation in the process. The outer
// lock only guards the room map; all per-room mutation happens under
// the room's own lock with no I/O inside the critical section.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomState
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*roomState)}
}

// Join appends the user if absent, creating the room lazily, and
// returns the full roster in join order. A concurrent Leave may empty
// and destroy the room between the map lookup and the room lock; the
// closed re-check makes Join retry against a fresh state instead of
// appending to the orphan.
func (s *RoomStore) Join(roomID domain.RoomID, uid domain.UserID) []domain.UserID {
	for {
		s.mu.Lock()
		room, ok := s.rooms[roomID]
		if !ok {
			room = &roomState{}
			s.rooms[roomID] = room
			log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room created")
		}
		s.mu.Unlock()

		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}
		present := false
		for _, p := range room.participants {
			if p == uid {
				present = true
				break
			}
		}
		if !present {
			room.participants = append(room.participants, uid)
		}
		roster := append([]domain.UserID(nil), room.participants...)
		room.mu.Unlock()
		return roster
	}
}

// Leave removes the user and every negotiation they offered. closed
// reports that the roster became empty and the room was destroyed; an
// unknown room is a benign no-op with a nil roster.
func (s *RoomStore) Leave(roomID domain.RoomID, uid domain.UserID) (roster []domain.UserID, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	kept := room.participants[:0]
	for _, p := range room.participants {
		if p != uid {
			kept = append(kept, p)
		}
	}
	room.participants = kept

	negs := room.negotiations[:0]
	for _, n := range room.negotiations {
		if n.Offerer != uid {
			negs = append(negs, n)
		}
	}
	room.negotiations = negs

	if len(room.participants) == 0 {
		room.closed = true
		delete(s.rooms, roomID)
		log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room destroyed")
		return nil, true
	}
	return append([]domain.UserID(nil), room.participants...), false
}

func (s *RoomStore) get(roomID domain.RoomID) (*roomState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

// AddOffer appends a new open negotiation for the offerer.
func (s *RoomStore) AddOffer(roomID domain.RoomID, offerer domain.UserID, payload string) (domain.NegotiationID, error) {
	room, ok := s.get(roomID)
	if !ok {
		return "", ErrUnknownRoom
	}
	neg := &domain.Negotiation{
		ID:      domain.NewNegotiationID(),
		Offerer: offerer,
		Offer:   payload,
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return "", ErrUnknownRoom
	}
	room.negotiations = append(room.negotiations, neg)
	return neg.ID, nil
}

// BindAnswer binds the answerer to the offerer's latest open offer and
// returns a snapshot of the negotiation, including the offerer-side
// candidates buffered before the answer existed. A client re-offering
// abandons its earlier attempts, so those open offers are dropped on
// bind (last-offer-wins).
func (s *RoomStore) BindAnswer(roomID domain.RoomID, offerer, answerer domain.UserID, payload string) (domain.Negotiation, error) {
	room, ok := s.get(roomID)
	if !ok {
		return domain.Negotiation{}, ErrNoOpenOffer
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return domain.Negotiation{}, ErrNoOpenOffer
	}
	answered := false
	for i := len(room.negotiations) - 1; i >= 0; i-- {
		n := room.negotiations[i]
		if n.Offerer != offerer {
			continue
		}
		if n.Answered {
			answered = true
			continue
		}
		n.Answerer = answerer
		n.Answer = payload
		n.Answered = true

		kept := room.negotiations[:0]
		for _, o := range room.negotiations {
			if o.Offerer == offerer && !o.Answered {
				continue
			}
			kept = append(kept, o)
		}
		room.negotiations = kept

		snap := *n
		snap.OffererCandidates = append([]domain.Candidate(nil), n.OffererCandidates...)
		snap.AnswererCandidates = append([]domain.Candidate(nil), n.AnswererCandidates...)
		return snap, nil
	}
	if answered {
		return domain.Negotiation{}, ErrAlreadyAnswered
	}
	return domain.Negotiation{}, ErrNoOpenOffer
}

// AddCandidate appends the candidate to the matching negotiation side
// and returns the counterpart the candidate must be forwarded to. An
// offer-side candidate arriving before any answer is buffered and the
// returned target is empty.
func (s *RoomStore) AddCandidate(roomID domain.RoomID, from domain.UserID, offerSide bool, cand domain.Candidate) (domain.UserID, error) {
	room, ok := s.get(roomID)
	if !ok {
		return "", ErrNoNegotiation
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return "", ErrNoNegotiation
	}
	for i := len(room.negotiations) - 1; i >= 0; i-- {
		n := room.negotiations[i]
		if offerSide {
			if n.Offerer != from {
				continue
			}
			n.OffererCandidates = append(n.OffererCandidates, cand)
			if !n.Answered {
				return "", nil
			}
			return n.Answerer, nil
		}
		if !n.Answered || n.Answerer != from {
			continue
		}
		n.AnswererCandidates = append(n.AnswererCandidates, cand)
		return n.Offerer, nil
	}
	return "", ErrNoNegotiation
}

func (s *RoomStore) Roster(roomID domain.RoomID) ([]domain.UserID, bool) {
	room, ok := s.get(roomID)
	if !ok {
		return nil, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil, false
	}
	return append([]domain.UserID(nil), room.participants...), true
}

func (s *RoomStore) List() []domain.RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomInfo, 0, len(s.rooms))
	for id, room := range s.rooms {
		room.mu.Lock()
		out = append(out, domain.RoomInfo{ID: id, MemberCount: len(room.participants)})
		room.mu.Unlock()
	}
	return out
}
