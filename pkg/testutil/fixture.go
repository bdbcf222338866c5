package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/internal/repository"
)

var (
	// Drawing1 is open and nothing is claimed yet.
	Drawing1 = &entity.Drawing{
		Base:          entity.Base{ID: "drawing1"},
		Title:         "Open drawing",
		HostID:        "host1",
		TotalSlots:    100,
		EndAt:         MockNow.Add(24 * time.Hour),
		SelectionMode: entity.RandomParticipant,
		WinnersAmount: 3,
	}

	// Drawing2 has ended, it selects random participants.
	Drawing2 = &entity.Drawing{
		Base:          entity.Base{ID: "drawing2"},
		Title:         "Ended participant drawing",
		HostID:        "host1",
		TotalSlots:    10,
		EndAt:         MockNow.Add(-time.Hour),
		SelectionMode: entity.RandomParticipant,
		WinnersAmount: 3,
	}

	// Drawing3 has ended, it selects random numbers in [1, 50].
	Drawing3 = &entity.Drawing{
		Base:          entity.Base{ID: "drawing3"},
		Title:         "Ended number drawing",
		HostID:        "host2",
		TotalSlots:    50,
		EndAt:         MockNow.Add(-time.Hour),
		SelectionMode: entity.RandomNumber,
		WinnersAmount: 5,
		Rules:         entity.Map{"number_min": 1, "number_max": 50},
	}

	// Drawing4 has ended and its winners are selected automatically.
	Drawing4 = &entity.Drawing{
		Base:          entity.Base{ID: "drawing4"},
		Title:         "Auto select drawing",
		HostID:        "host2",
		TotalSlots:    10,
		EndAt:         MockNow.Add(-time.Minute),
		SelectionMode: entity.RandomParticipant,
		WinnersAmount: 1,
		AutoSelect:    true,
	}

	Drawings = []*entity.Drawing{Drawing1, Drawing2, Drawing3, Drawing4}
)

var (
	// Drawing2 participants, the last one is not eligible.
	Participant2s = []*entity.Participant{
		{Base: entity.Base{ID: "p2-1"}, DrawingID: Drawing2.ID, Name: "Alice", Eligible: true},
		{Base: entity.Base{ID: "p2-2"}, DrawingID: Drawing2.ID, Name: "Bob", Eligible: true},
		{Base: entity.Base{ID: "p2-3"}, DrawingID: Drawing2.ID, Name: "Carol", Eligible: true},
		{Base: entity.Base{ID: "p2-4"}, DrawingID: Drawing2.ID, Name: "Dave", Eligible: true},
		{Base: entity.Base{ID: "p2-5"}, DrawingID: Drawing2.ID, Name: "Erin", Eligible: true},
		{Base: entity.Base{ID: "p2-6"}, DrawingID: Drawing2.ID, Name: "Frank", Eligible: false},
	}

	// Drawing3 participants. Each eligible participant i holds the numbers i,
	// i+10 and i+20; the ineligible one holds 41 to 45.
	Participant3s = []*entity.Participant{
		{Base: entity.Base{ID: "p3-1"}, DrawingID: Drawing3.ID, Name: "Grace", Eligible: true},
		{Base: entity.Base{ID: "p3-2"}, DrawingID: Drawing3.ID, Name: "Heidi", Eligible: true},
		{Base: entity.Base{ID: "p3-3"}, DrawingID: Drawing3.ID, Name: "Ivan", Eligible: true},
		{Base: entity.Base{ID: "p3-4"}, DrawingID: Drawing3.ID, Name: "Judy", Eligible: true},
		{Base: entity.Base{ID: "p3-5"}, DrawingID: Drawing3.ID, Name: "Mallory", Eligible: true},
		{Base: entity.Base{ID: "p3-6"}, DrawingID: Drawing3.ID, Name: "Niaj", Eligible: true},
		{Base: entity.Base{ID: "p3-7"}, DrawingID: Drawing3.ID, Name: "Olivia", Eligible: false},
	}

	Participant4s = []*entity.Participant{
		{Base: entity.Base{ID: "p4-1"}, DrawingID: Drawing4.ID, Name: "Peggy", Eligible: true},
		{Base: entity.Base{ID: "p4-2"}, DrawingID: Drawing4.ID, Name: "Rupert", Eligible: true},
	}
)

// Drawing3Holders maps every taken number of Drawing3 to its participant.
func Drawing3Holders() map[int]string {
	holders := map[int]string{}
	for i := 1; i <= 6; i++ {
		id := Participant3s[i-1].ID
		holders[i] = id
		holders[i+10] = id
		holders[i+20] = id
	}

	for n := 41; n <= 45; n++ {
		holders[n] = Participant3s[6].ID
	}

	return holders
}

func CreateFixtureDb(ctx context.Context) {
	drawingRepo := repository.NewDrawingRepository()
	for _, drawing := range Drawings {
		if err := drawingRepo.Create(ctx, drawing); err != nil {
			panic(err)
		}
	}

	participantRepo := repository.NewParticipantRepository()
	for _, participants := range [][]*entity.Participant{Participant2s, Participant3s, Participant4s} {
		for _, p := range participants {
			if err := participantRepo.Create(ctx, p); err != nil {
				panic(err)
			}
		}
	}

	holders := Drawing3Holders()
	slotRepo := repository.NewSlotRepository()
	for _, drawing := range Drawings {
		slots := make([]entity.Slot, 0, drawing.TotalSlots)
		for n := 1; n <= drawing.TotalSlots; n++ {
			slot := entity.Slot{DrawingID: drawing.ID, Number: n, Status: entity.SlotAvailable}
			if drawing.ID == Drawing3.ID {
				if id, ok := holders[n]; ok {
					slot.Status = entity.SlotTaken
					slot.ParticipantID = sql.NullString{String: id, Valid: true}
				}
			}

			slots = append(slots, slot)
		}

		if err := slotRepo.CreateBatch(ctx, slots); err != nil {
			panic(err)
		}
	}

	// A live reservation in Drawing3 must never be selected.
	err := slotRepo.SetReservedIfAvailable(ctx, Drawing3.ID, 50, "holder-x", MockNow, MockNow.Add(time.Hour))
	if err != nil {
		panic(err)
	}
}
