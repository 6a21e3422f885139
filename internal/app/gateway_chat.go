package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// ChatSend accepts a message, fans it out to the conversation's other
// members, and records delivery for the recipients that are online
// right now. A failed membership lookup skips fan-out and delivery;
// the message still counts as sent.
func (g *Gateway) ChatSend(sid domain.SessionID, conv domain.ConversationID, text string, file *domain.FileMeta, replyTo domain.MessageID) {
	sess, ok := g.registry.Get(sid)
	if !ok {
		return
	}
	msg, err := domain.NewMessage(sess.User.ID, conv, text, file, replyTo)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Msg("chat message rejected")
		return
	}
	g.delivery.RecordSent(msg.ID, conv)

	members, err := g.members.MembersOf(conv)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("conversation", string(conv)).Msg("membership lookup failed, delivery skipped")
		return
	}
	recipients := make([]domain.UserID, 0, len(members))
	for _, m := range members {
		if m != sess.User.ID {
			recipients = append(recipients, m)
		}
	}
	ev := domain.ChatNew{Type: domain.EvChatNew, Message: *msg}
	for _, uid := range recipients {
		g.pushUser(uid, ev)
	}

	online := g.presence.OnlineAmong(recipients)
	if len(online) == 0 {
		return
	}
	g.delivery.RecordDelivered(msg.ID, online)
	g.pushUser(sess.User.ID, domain.ChatDelivered{
		Type:       domain.EvChatDelivered,
		Message:    msg.ID,
		Recipients: online,
	})
}

// ChatRead marks the message read by the caller and broadcasts the
// transition to the conversation exactly once per reader.
func (g *Gateway) ChatRead(sid domain.SessionID, mid domain.MessageID) {
	sess, ok := g.registry.Get(sid)
	if !ok {
		return
	}
	if !g.delivery.RecordRead(mid, sess.User.ID) {
		return
	}
	conv, ok := g.delivery.Conversation(mid)
	if !ok {
		return
	}
	members, err := g.members.MembersOf(conv)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("conversation", string(conv)).Msg("membership lookup failed, read receipt dropped")
		return
	}
	g.pushUsers(members, sess.User.ID, domain.ChatRead{
		Type:    domain.EvChatReadDone,
		Message: mid,
		Reader:  sess.User.ID,
	})
}

// Typing relays a typing indicator to the conversation's other members.
// Nothing is stored; the indicator is pure fan-out.
func (g *Gateway) Typing(sid domain.SessionID, conv domain.ConversationID, isTyping bool) {
	sess, ok := g.registry.Get(sid)
	if !ok {
		return
	}
	members, err := g.members.MembersOf(conv)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.gateway").Str("conversation", string(conv)).Msg("typing dropped")
		return
	}
	g.pushUsers(members, sess.User.ID, domain.TypingNotice{
		Type:         domain.EvTypingNotice,
		User:         sess.User.ID,
		Conversation: conv,
		IsTyping:     isTyping,
	})
}
