package entity

type Participant struct {
	Base

	DrawingID string  `gorm:"index"`
	Drawing   Drawing `gorm:"foreignKey:DrawingID;constraint:OnDelete:CASCADE"`

	Name     string
	Contact  string
	Eligible bool
	IsWinner bool
}
