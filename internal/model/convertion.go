package model

import (
	"fmt"
	"time"

	"github.com/slotdraw/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertSlot(slot *entity.Slot, now time.Time) Slot {
	if slot == nil {
		return Slot{}
	}

	result := Slot{
		Number: slot.Number,
		Status: string(slot.EffectiveStatus(now)),
	}

	switch result.Status {
	case string(entity.SlotReserved):
		result.ExpiresAt = slot.ExpiresAt.Time.UTC().Format(DefaultTimeLayout)
	case string(entity.SlotTaken):
		result.ParticipantID = slot.ParticipantID.String
	}

	return result
}

func ConvertSlots(slots []entity.Slot, now time.Time) []Slot {
	result := []Slot{}
	for i := range slots {
		result = append(result, ConvertSlot(&slots[i], now))
	}

	return result
}

// ConvertStats derives the available count and the percentages from the raw
// counters. The percentage is kept unrounded, only the display string is
// rounded.
func ConvertStats(total, taken, reserved int64) Stats {
	stats := Stats{
		Total:     total,
		Taken:     taken,
		Reserved:  reserved,
		Available: total - taken - reserved,
	}

	if total > 0 {
		stats.PercentageTaken = float64(taken) / float64(total) * 100
	}
	stats.PercentageTakenDisplay = fmt.Sprintf("%.2f", stats.PercentageTaken)

	return stats
}

func ConvertDrawingRules(rules entity.DrawingRules) DrawingRules {
	return DrawingRules{
		MaxHoldsPerHolder: rules.MaxHoldsPerHolder,
		NumberMin:         rules.NumberMin,
		NumberMax:         rules.NumberMax,
	}
}

func ConvertDrawing(drawing *entity.Drawing, rules entity.DrawingRules, now time.Time) Drawing {
	if drawing == nil {
		return Drawing{}
	}

	result := Drawing{
		ID:            drawing.ID,
		Title:         drawing.Title,
		HostID:        drawing.HostID,
		TotalSlots:    drawing.TotalSlots,
		EndAt:         drawing.EndAt.UTC().Format(DefaultTimeLayout),
		Phase:         string(drawing.Phase(now)),
		SelectionMode: string(drawing.SelectionMode),
		WinnersAmount: drawing.WinnersAmount,
		RandomNumber:  drawing.RandomNumber,
		AutoSelect:    drawing.AutoSelect,
		Rules:         ConvertDrawingRules(rules),
		CreatedAt:     drawing.CreatedAt.UTC().Format(DefaultTimeLayout),
	}

	if drawing.WinnersSelectedAt.Valid {
		result.WinnersSelectedAt = drawing.WinnersSelectedAt.Time.UTC().Format(DefaultTimeLayout)
	}

	return result
}

func ConvertParticipant(participant *entity.Participant, numbers []int) Participant {
	if participant == nil {
		return Participant{}
	}

	if numbers == nil {
		numbers = []int{}
	}

	return Participant{
		ID:        participant.ID,
		DrawingID: participant.DrawingID,
		Name:      participant.Name,
		Contact:   participant.Contact,
		Eligible:  participant.Eligible,
		IsWinner:  participant.IsWinner,
		Numbers:   numbers,
		CreatedAt: participant.CreatedAt.UTC().Format(DefaultTimeLayout),
	}
}

func ConvertWinner(winner *entity.WinnerRecord, name string) Winner {
	result := Winner{
		Rank:          winner.Rank,
		ParticipantID: winner.ParticipantID,
		Name:          name,
		SelectedAt:    winner.SelectedAt.UTC().Format(DefaultTimeLayout),
	}

	if winner.Number.Valid {
		number := int(winner.Number.Int64)
		result.Number = &number
	}

	return result
}
