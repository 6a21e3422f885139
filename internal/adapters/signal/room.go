package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

func (ctl *Controller) handleJoin(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type joinPayload struct {
		Type domain.EventType `json:"type"`
		Room string           `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Room == "" {
		ctl.sendError(c, "empty room")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join")
	ctl.gateway.Join(sid, domain.RoomID(p.Room))
}

// handleLeave drops the room membership without tearing the connection
// down; the socket stays usable for chat and a later re-join.
func (ctl *Controller) handleLeave(sid domain.SessionID, c *wsSignalConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.gateway.Leave(sid)
	ctl.sendJSON(c, domain.LeftAck{Type: domain.EvLeft})
}
