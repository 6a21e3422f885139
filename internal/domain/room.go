package domain

type RoomID string

// RoomInfo is the listing projection of a live room.
type RoomInfo struct {
	ID          RoomID `json:"id"`
	MemberCount int    `json:"member_count"`
}
