package entity

import (
	"database/sql"
	"time"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/slotdraw/backend/pkg/enum"
)

type SelectionMode string

var (
	RandomParticipant = enum.New(SelectionMode("random-participant"))
	RandomNumber      = enum.New(SelectionMode("random-number"))
)

type DrawingPhase string

var (
	DrawingOpen  = enum.New(DrawingPhase("open"))
	DrawingEnded = enum.New(DrawingPhase("ended"))
)

type Drawing struct {
	Base

	Title  string
	HostID string `gorm:"index"`

	TotalSlots    int
	EndAt         time.Time `gorm:"index"`
	SelectionMode SelectionMode
	WinnersAmount int

	// RandomNumber drawings assign slot numbers randomly, participants cannot
	// pick a specific number.
	RandomNumber bool

	// AutoSelect drawings get their winners selected by the cron job as soon
	// as they end.
	AutoSelect bool

	Rules Map

	WinnersSelectedAt sql.NullTime
	SelectionSeed     sql.NullInt64
}

// Phase recomputes the lifecycle phase from EndAt. It is never stored.
func (d *Drawing) Phase(now time.Time) DrawingPhase {
	if now.Before(d.EndAt) {
		return DrawingOpen
	}

	return DrawingEnded
}

func (d *Drawing) HasEnded(now time.Time) bool {
	return d.Phase(now) == DrawingEnded
}

// DrawingRules is the decoded form of Drawing.Rules.
type DrawingRules struct {
	MaxHoldsPerHolder int `mapstructure:"max_holds_per_holder" structs:"max_holds_per_holder"`
	NumberMin         int `mapstructure:"number_min" structs:"number_min"`
	NumberMax         int `mapstructure:"number_max" structs:"number_max"`
}

func (d *Drawing) DecodeRules() (DrawingRules, error) {
	var rules DrawingRules
	if len(d.Rules) == 0 {
		return rules, nil
	}

	if err := mapstructure.Decode(map[string]any(d.Rules), &rules); err != nil {
		return rules, err
	}

	return rules, nil
}

func (d *Drawing) SetRules(rules DrawingRules) {
	d.Rules = structs.Map(rules)
}

// NumberRange is the range of numbers drawn by the random-number mode. It
// defaults to every slot of the drawing.
func (r DrawingRules) NumberRange(totalSlots int) (int, int) {
	min, max := r.NumberMin, r.NumberMax
	if min == 0 {
		min = 1
	}

	if max == 0 {
		max = totalSlots
	}

	return min, max
}
