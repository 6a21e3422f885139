// Package membership is the in-memory stand-in for the persistence
// service that owns conversation membership. The coordinator only ever
// reads from it.
package membership

import (
	"errors"
	"sync"

	"github.com/dkeye/Parley/internal/domain"
)

var ErrUnknownConversation = errors.New("unknown conversation")

type Store struct {
	mu      sync.RWMutex
	members map[domain.ConversationID][]domain.UserID
}

func NewStore() *Store {
	return &Store{members: make(map[domain.ConversationID][]domain.UserID)}
}

func (s *Store) Set(conv domain.ConversationID, members []domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[conv] = append([]domain.UserID(nil), members...)
}

func (s *Store) MembersOf(conv domain.ConversationID) ([]domain.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, ok := s.members[conv]
	if !ok {
		return nil, ErrUnknownConversation
	}
	return append([]domain.UserID(nil), members...), nil
}
