package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// The coordinator relays SDP blobs and ICE candidates verbatim between
// peers. It never parses them and never opens a peer connection of its
// own; media flows directly between clients.

func (ctl *Controller) handleOffer(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type offerPayload struct {
		Type    domain.EventType `json:"type"`
		Payload string           `json:"payload"`
	}
	var p offerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad offer payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Payload == "" {
		ctl.sendError(c, "empty offer")
		return
	}
	ctl.gateway.Offer(sid, p.Payload)
}

func (ctl *Controller) handleAnswer(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type answerPayload struct {
		Type    domain.EventType `json:"type"`
		To      string           `json:"to"`
		Payload string           `json:"payload"`
	}
	var p answerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad answer payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.To == "" || p.Payload == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.gateway.Answer(sid, domain.UserID(p.To), p.Payload)
}

func (ctl *Controller) handleIce(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type icePayload struct {
		Type      domain.EventType `json:"type"`
		To        string           `json:"to"`
		OfferSide bool             `json:"offer_side"`
		Candidate json.RawMessage  `json:"candidate"`
	}
	var p icePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	if len(p.Candidate) == 0 {
		return
	}
	// The counterpart is resolved from the negotiation state, not from
	// the client-supplied "to" field; a stale client cannot redirect a
	// candidate to an arbitrary user.
	ctl.gateway.Candidate(sid, p.OfferSide, domain.Candidate(p.Candidate))
}
