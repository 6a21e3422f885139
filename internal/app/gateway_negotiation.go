package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// Negotiation routing. Per negotiation the state machine is
// Open -> Answered -> Closed (removed on leave or room teardown);
// there is no way back from Answered to Open.

// Offer records a new open offer and broadcasts it to every other
// participant, since any peer may choose to answer.
func (g *Gateway) Offer(sid domain.SessionID, payload string) {
	sess, ok := g.registry.Get(sid)
	if !ok || sess.Room == "" {
		log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Msg("offer outside a room dropped")
		return
	}
	negID, err := g.rooms.AddOffer(sess.Room, sess.User.ID, payload)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(sess.Room)).Msg("offer dropped")
		return
	}
	roster, ok := g.rooms.Roster(sess.Room)
	if !ok {
		return
	}
	g.pushUsers(roster, sess.User.ID, domain.OfferAwaiting{
		Type:        domain.EvOfferAwaiting,
		Negotiation: negID,
		Offerer:     sess.User.ID,
		Payload:     payload,
	})
}

// Answer binds the caller to the offerer's open offer. The answer goes
// point-to-point to the offerer, and the offerer-side candidates that
// were buffered before the answer existed are replayed to the caller.
// A missing or already answered offer is benign contention: the
// offerer moved on or a faster peer won, so the event is dropped.
func (g *Gateway) Answer(sid domain.SessionID, offerer domain.UserID, payload string) {
	sess, ok := g.registry.Get(sid)
	if !ok || sess.Room == "" {
		return
	}
	neg, err := g.rooms.BindAnswer(sess.Room, offerer, sess.User.ID, payload)
	if err != nil {
		if errors.Is(err, ErrAlreadyAnswered) || errors.Is(err, ErrNoOpenOffer) {
			log.Debug().Err(err).Str("module", "app.gateway").Str("offerer", string(offerer)).Msg("answer dropped")
			return
		}
		log.Warn().Err(err).Str("module", "app.gateway").Msg("answer failed")
		return
	}
	g.pushUser(offerer, domain.AnswerReady{
		Type:        domain.EvAnswerReady,
		Negotiation: neg.ID,
		Answerer:    sess.User.ID,
		Payload:     payload,
	})
	for _, cand := range neg.OffererCandidates {
		g.pushUser(sess.User.ID, domain.IceReceived{
			Type:      domain.EvIceReceived,
			From:      offerer,
			Candidate: cand,
		})
	}
}

// Candidate appends an ICE candidate to its negotiation side and
// forwards it to the counterpart the store resolves. Candidates are
// best-effort: with no matching negotiation the candidate is dropped,
// never retried, since re-negotiation supersedes it anyway.
func (g *Gateway) Candidate(sid domain.SessionID, offerSide bool, cand domain.Candidate) {
	sess, ok := g.registry.Get(sid)
	if !ok || sess.Room == "" {
		return
	}
	target, err := g.rooms.AddCandidate(sess.Room, sess.User.ID, offerSide, cand)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Msg("candidate dropped")
		return
	}
	if target == "" {
		// Buffered on the offer side until an answer binds.
		return
	}
	g.pushUser(target, domain.IceReceived{
		Type:      domain.EvIceReceived,
		From:      sess.User.ID,
		Candidate: cand,
	})
}
