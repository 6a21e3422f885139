package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

func (ctl *Controller) handleChatSend(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type chatSendPayload struct {
		Type         domain.EventType `json:"type"`
		Conversation string           `json:"conversation"`
		Text         string           `json:"text"`
		File         *domain.FileMeta `json:"file,omitempty"`
		ReplyTo      string           `json:"reply_to,omitempty"`
	}
	var p chatSendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Conversation == "" {
		ctl.sendError(c, "empty conversation")
		return
	}
	ctl.gateway.ChatSend(sid, domain.ConversationID(p.Conversation), p.Text, p.File, domain.MessageID(p.ReplyTo))
}

func (ctl *Controller) handleChatRead(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type chatReadPayload struct {
		Type    domain.EventType `json:"type"`
		Message string           `json:"message"`
	}
	var p chatReadPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad read payload")
		return
	}
	if p.Message == "" {
		return
	}
	ctl.gateway.ChatRead(sid, domain.MessageID(p.Message))
}

func (ctl *Controller) handleTyping(sid domain.SessionID, c *wsSignalConn, data []byte) {
	type typingPayload struct {
		Type         domain.EventType `json:"type"`
		Conversation string           `json:"conversation"`
		IsTyping     bool             `json:"is_typing"`
	}
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	if p.Conversation == "" {
		return
	}
	ctl.gateway.Typing(sid, domain.ConversationID(p.Conversation), p.IsTyping)
}
