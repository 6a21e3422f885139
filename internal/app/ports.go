// Package app holds the in-memory coordination stores and the event
// fan-out gateway that drives them. All shared mutable state of the
// process lives behind the types in this package.
package app

import "github.com/dkeye/Parley/internal/domain"

// Frame is a raw encoded payload pushed to a signaling transport.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MembershipLookup resolves the member set of a conversation. It is
// backed by external persistence; when the lookup fails the caller
// skips the delivery step instead of surfacing an error.
type MembershipLookup interface {
	MembersOf(conv domain.ConversationID) ([]domain.UserID, error)
}
