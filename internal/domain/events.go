package domain

import "time"

// EventType tags every frame crossing the signaling transport.
type EventType string

// Inbound event types.
const (
	EvJoin     EventType = "join"
	EvLeave    EventType = "leave"
	EvOffer    EventType = "offer"
	EvAnswer   EventType = "answer"
	EvIce      EventType = "ice"
	EvChatSend EventType = "chat_send"
	EvChatRead EventType = "chat_read"
	EvTyping   EventType = "typing"
	EvPing     EventType = "ping"
	EvWhoAmI   EventType = "whoami"
)

// Outbound event types.
const (
	EvRoomRoster    EventType = "room_roster"
	EvLeft          EventType = "left"
	EvOfferAwaiting EventType = "offer_awaiting"
	EvAnswerReady   EventType = "answer_ready"
	EvIceReceived   EventType = "ice_received"
	EvUserOnline    EventType = "user_online"
	EvUserOffline   EventType = "user_offline"
	EvChatNew       EventType = "chat_new"
	EvChatDelivered EventType = "chat_delivered"
	EvChatReadDone  EventType = "chat_read"
	EvTypingNotice  EventType = "typing"
	EvPong          EventType = "pong"
	EvError         EventType = "error"
	EvIdentity      EventType = "whoami"
)

type RoomRoster struct {
	Type         EventType `json:"type"`
	Room         RoomID    `json:"room"`
	Participants []UserID  `json:"participants"`
}

// LeftAck confirms the sender's own leave; the remaining participants
// learn about it from the roster update instead.
type LeftAck struct {
	Type EventType `json:"type"`
}

type OfferAwaiting struct {
	Type        EventType     `json:"type"`
	Negotiation NegotiationID `json:"negotiation"`
	Offerer     UserID        `json:"offerer"`
	Payload     string        `json:"payload"`
}

type AnswerReady struct {
	Type        EventType     `json:"type"`
	Negotiation NegotiationID `json:"negotiation"`
	Answerer    UserID        `json:"answerer"`
	Payload     string        `json:"payload"`
}

type IceReceived struct {
	Type      EventType `json:"type"`
	From      UserID    `json:"from"`
	Candidate Candidate `json:"candidate"`
}

type UserOnline struct {
	Type EventType `json:"type"`
	User UserID    `json:"user"`
}

type UserOffline struct {
	Type     EventType `json:"type"`
	User     UserID    `json:"user"`
	LastSeen time.Time `json:"last_seen"`
}

type ChatNew struct {
	Type    EventType `json:"type"`
	Message Message   `json:"message"`
}

type ChatDelivered struct {
	Type       EventType `json:"type"`
	Message    MessageID `json:"message"`
	Recipients []UserID  `json:"recipients"`
}

type ChatRead struct {
	Type    EventType `json:"type"`
	Message MessageID `json:"message"`
	Reader  UserID    `json:"reader"`
}

type TypingNotice struct {
	Type         EventType      `json:"type"`
	User         UserID         `json:"user"`
	Conversation ConversationID `json:"conversation"`
	IsTyping     bool           `json:"is_typing"`
}
