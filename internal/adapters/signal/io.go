package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid domain.SessionID, uid domain.UserID, c *wsSignalConn, cancel context.CancelFunc) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.gateway.Disconnect(sid)
	}()

	deadline := 2 * ctl.opts.PingPeriod
	_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.dispatch(sid, uid, c, data)
		}
	}
}

// dispatch decodes the envelope tag and routes to the typed handler.
// Every inbound event type is matched here; an unknown tag is a
// protocol error and is dropped, never fatal to the session.
func (ctl *Controller) dispatch(sid domain.SessionID, uid domain.UserID, c *wsSignalConn, data []byte) {
	var env struct {
		Type domain.EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	if env.Type != domain.EvPing && !ctl.limiter.Allow(uid) {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Str("type", string(env.Type)).Msg("rate limited, dropping event")
		return
	}

	switch env.Type {
	case domain.EvJoin:
		ctl.handleJoin(sid, c, data)
	case domain.EvLeave:
		ctl.handleLeave(sid, c)
	case domain.EvOffer:
		ctl.handleOffer(sid, c, data)
	case domain.EvAnswer:
		ctl.handleAnswer(sid, c, data)
	case domain.EvIce:
		ctl.handleIce(sid, c, data)
	case domain.EvChatSend:
		ctl.handleChatSend(sid, c, data)
	case domain.EvChatRead:
		ctl.handleChatRead(sid, c, data)
	case domain.EvTyping:
		ctl.handleTyping(sid, c, data)
	case domain.EvPing:
		ctl.handlePing(c)
	case domain.EvWhoAmI:
		ctl.handleWhoAmI(sid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *wsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *wsSignalConn, msg string) {
	ctl.sendJSON(c, map[string]any{
		"type":  domain.EvError,
		"error": msg,
	})
}
