package entity

import (
	"database/sql"
	"time"

	"github.com/slotdraw/backend/pkg/enum"
)

type SlotStatus string

var (
	SlotAvailable = enum.New(SlotStatus("available"))
	SlotReserved  = enum.New(SlotStatus("reserved"))
	SlotTaken     = enum.New(SlotStatus("taken"))
)

type Slot struct {
	DrawingID string  `gorm:"primaryKey"`
	Drawing   Drawing `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`
	Number    int     `gorm:"primaryKey;autoIncrement:false"`

	Status SlotStatus `gorm:"index"`

	Holder    sql.NullString
	ExpiresAt sql.NullTime `gorm:"index"`

	ParticipantID sql.NullString `gorm:"index"`

	UpdatedAt time.Time
}

// EffectiveStatus is the status every reader must use: a reservation whose
// expiry has passed is available even if no sweep has rewritten the row yet.
func (s *Slot) EffectiveStatus(now time.Time) SlotStatus {
	if s.Status == SlotReserved && s.IsExpired(now) {
		return SlotAvailable
	}

	return s.Status
}

func (s *Slot) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.Valid || !now.Before(s.ExpiresAt.Time)
}
