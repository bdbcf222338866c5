package common

import (
	"time"
)

const (
	TopicSlotReserved    = "slot.reserved"
	TopicSlotConfirmed   = "slot.confirmed"
	TopicSlotReleased    = "slot.released"
	TopicWinnersSelected = "winners.selected"
)

type SlotReservedEvent struct {
	DrawingID string    `json:"drawing_id"`
	Numbers   []int     `json:"numbers"`
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SlotConfirmedEvent struct {
	DrawingID     string `json:"drawing_id"`
	Numbers       []int  `json:"numbers"`
	ParticipantID string `json:"participant_id"`
}

type SlotReleasedEvent struct {
	DrawingID     string `json:"drawing_id"`
	Numbers       []int  `json:"numbers"`
	ReleasedCount int64  `json:"released_count"`
}

type WinnersSelectedEvent struct {
	DrawingID      string    `json:"drawing_id"`
	Mode           string    `json:"mode"`
	ParticipantIDs []string  `json:"participant_ids"`
	SelectedAt     time.Time `json:"selected_at"`
}
