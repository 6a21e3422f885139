package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type (
	MessageID      string
	ConversationID string
)

func NewMessageID() MessageID {
	return MessageID(uuid.NewString())
}

var ErrMessageEmpty = errors.New("message content empty")

// FileMeta describes an attachment already stored elsewhere. The
// coordinator only relays the descriptor.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mime string `json:"mime,omitempty"`
	URL  string `json:"url,omitempty"`
}

type Message struct {
	ID           MessageID      `json:"id"`
	Conversation ConversationID `json:"conversation"`
	Sender       UserID         `json:"sender"`
	Text         string         `json:"text"`
	File         *FileMeta      `json:"file,omitempty"`
	ReplyTo      MessageID      `json:"reply_to,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func NewMessage(sender UserID, conv ConversationID, text string, file *FileMeta, replyTo MessageID) (*Message, error) {
	if text == "" && file == nil {
		return nil, ErrMessageEmpty
	}
	return &Message{
		ID:           NewMessageID(),
		Conversation: conv,
		Sender:       sender,
		Text:         text,
		File:         file,
		ReplyTo:      replyTo,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
