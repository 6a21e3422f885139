package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

type NegotiationID string

func NewNegotiationID() NegotiationID {
	return NegotiationID(uuid.NewString())
}

// Candidate is an opaque ICE connectivity descriptor. The coordinator
// relays it verbatim and never inspects it.
type Candidate = json.RawMessage

// Negotiation is one offer and its eventual answer. Once an answerer is
// bound the record is immutable except for appended candidates.
type Negotiation struct {
	ID       NegotiationID
	Offerer  UserID
	Offer    string
	Answerer UserID
	Answer   string
	Answered bool

	// Offerer-side candidates collected before an answer exists are
	// replayed to the answerer when the answer is bound.
	OffererCandidates  []Candidate
	AnswererCandidates []Candidate
}
