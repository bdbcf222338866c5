package entity

import (
	"database/sql"
	"time"
)

type WinnerRecord struct {
	SnowFlakeBase

	DrawingID string  `gorm:"uniqueIndex:idx_winner_records_drawing_rank"`
	Drawing   Drawing `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`

	ParticipantID string      `gorm:"index"`
	Participant   Participant `gorm:"foreignKey:ParticipantID"`

	Number     sql.NullInt64
	Rank       int `gorm:"uniqueIndex:idx_winner_records_drawing_rank"`
	SelectedAt time.Time
}
