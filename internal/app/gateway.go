package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// Gateway is the single ingress and egress point for protocol events.
// It resolves the acting user through the registry, dispatches to the
// stores, and pushes the resulting events to the target sessions. No
// store lock is ever held across an outbound push.
type Gateway struct {
	registry *Registry
	rooms    *RoomStore
	presence *PresenceTracker
	delivery *DeliveryTracker
	members  MembershipLookup
}

func NewGateway(reg *Registry, rooms *RoomStore, presence *PresenceTracker, delivery *DeliveryTracker, members MembershipLookup) *Gateway {
	return &Gateway{
		registry: reg,
		rooms:    rooms,
		presence: presence,
		delivery: delivery,
		members:  members,
	}
}

// Connect registers the session and announces the user when this is
// their first live session.
func (g *Gateway) Connect(sid domain.SessionID, user domain.User, conn SignalConnection, cancel context.CancelFunc) error {
	if err := g.registry.Register(sid, user, conn, cancel); err != nil {
		return err
	}
	if g.presence.MarkOnline(user.ID, sid) {
		g.pushAllExcept(user.ID, domain.UserOnline{Type: domain.EvUserOnline, User: user.ID})
	}
	return nil
}

// Disconnect runs the cleanup path for a dead session: first the room
// roster update, then the presence retraction. Observers therefore
// never see a roster update for a user already announced offline.
func (g *Gateway) Disconnect(sid domain.SessionID) {
	sess, ok := g.registry.Unregister(sid)
	if !ok {
		return
	}
	if sess.Room != "" {
		g.leaveRoom(sess.Room, sess.User.ID)
	}
	if g.presence.MarkOffline(sess.User.ID, sid) {
		g.pushAllExcept(sess.User.ID, domain.UserOffline{
			Type:     domain.EvUserOffline,
			User:     sess.User.ID,
			LastSeen: time.Now().UTC(),
		})
	}
}

// Join moves the session into the room, leaving any previous room
// first, and broadcasts the new roster to every participant.
func (g *Gateway) Join(sid domain.SessionID, roomID domain.RoomID) {
	sess, ok := g.registry.Get(sid)
	if !ok {
		return
	}
	if sess.Room != "" && sess.Room != roomID {
		g.leaveRoom(sess.Room, sess.User.ID)
	}
	roster := g.rooms.Join(roomID, sess.User.ID)
	g.registry.SetRoom(sid, roomID)
	g.pushUsers(roster, "", domain.RoomRoster{
		Type:         domain.EvRoomRoster,
		Room:         roomID,
		Participants: roster,
	})
}

// Leave removes the session's user from their current room.
func (g *Gateway) Leave(sid domain.SessionID) {
	sess, ok := g.registry.Get(sid)
	if !ok || sess.Room == "" {
		return
	}
	g.registry.ClearRoom(sid)
	g.leaveRoom(sess.Room, sess.User.ID)
}

func (g *Gateway) leaveRoom(roomID domain.RoomID, uid domain.UserID) {
	roster, closed := g.rooms.Leave(roomID, uid)
	if closed || roster == nil {
		return
	}
	g.pushUsers(roster, "", domain.RoomRoster{
		Type:         domain.EvRoomRoster,
		Room:         roomID,
		Participants: roster,
	})
}

func (g *Gateway) RoomList() []domain.RoomInfo {
	return g.rooms.List()
}

// Whereis resolves a session to its user and current room.
func (g *Gateway) Whereis(sid domain.SessionID) (domain.User, domain.RoomID, bool) {
	sess, ok := g.registry.Get(sid)
	if !ok {
		return domain.User{}, "", false
	}
	return sess.User, sess.Room, true
}

// push marshals the event once and hands it to a single session. A
// send failure means the consumer is too slow or already gone; the
// session is canceled so the regular disconnect path reclaims it.
func (g *Gateway) pushSession(sid domain.SessionID, ev any) {
	conn, ok := g.registry.Conn(sid)
	if !ok {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("marshal outbound event")
		return
	}
	if err := conn.TrySend(Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Msg("push failed, canceling session")
		g.registry.Cancel(sid)
	}
}

func (g *Gateway) pushUser(uid domain.UserID, ev any) {
	for _, sid := range g.registry.LookupByUser(uid) {
		g.pushSession(sid, ev)
	}
}

func (g *Gateway) pushUsers(uids []domain.UserID, exclude domain.UserID, ev any) {
	for _, uid := range uids {
		if uid == exclude {
			continue
		}
		g.pushUser(uid, ev)
	}
}

func (g *Gateway) pushAllExcept(exclude domain.UserID, ev any) {
	for _, sid := range g.registry.AllSessions() {
		sess, ok := g.registry.Get(sid)
		if !ok || sess.User.ID == exclude {
			continue
		}
		g.pushSession(sid, ev)
	}
}
