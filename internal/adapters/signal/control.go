package signal

import "github.com/dkeye/Parley/internal/domain"

func (ctl *Controller) handlePing(c *wsSignalConn) {
	ctl.sendJSON(c, map[string]any{
		"type": domain.EvPong,
	})
}

func (ctl *Controller) handleWhoAmI(sid domain.SessionID, c *wsSignalConn) {
	user, room, ok := ctl.gateway.Whereis(sid)
	if !ok {
		return
	}
	resp := struct {
		Type domain.EventType `json:"type"`
		User domain.User      `json:"user"`
		Room domain.RoomID    `json:"room,omitempty"`
	}{
		Type: domain.EvIdentity,
		User: user,
		Room: room,
	}
	ctl.sendJSON(c, resp)
}
