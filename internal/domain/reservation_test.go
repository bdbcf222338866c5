package domain

import (
	"encoding/json"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/slotdraw/backend/internal/common"
	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func Test_reservationDomain_Reserve(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	// Holder A reserves slot 7 with the default TTL.
	resp, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
		DrawingID: testutil.Drawing1.ID,
		Number:    7,
		Holder:    "A",
	})
	require.NoError(t, err)
	require.Equal(t, 7, resp.Number)
	require.Equal(t, testutil.MockNow.Add(15*time.Minute).Format(model.DefaultTimeLayout), resp.ExpiresAt)

	// Holder B cannot reserve it while the hold is live.
	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
		DrawingID: testutil.Drawing1.ID,
		Number:    7,
		Holder:    "B",
	})
	require.True(t, errorx.Is(err, errorx.SlotUnavailable))

	slot, err := d.reservation.GetSlot(ctx, &model.GetSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 7})
	require.NoError(t, err)
	require.Equal(t, "reserved", slot.Slot.Status)

	// After the TTL, the slot is available again and B gets it.
	d.clock.Advance(16 * time.Minute)

	slot, err = d.reservation.GetSlot(ctx, &model.GetSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 7})
	require.NoError(t, err)
	require.Equal(t, "available", slot.Slot.Status)
	require.Empty(t, slot.Slot.ExpiresAt)

	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
		DrawingID: testutil.Drawing1.ID,
		Number:    7,
		Holder:    "B",
	})
	require.NoError(t, err)

	packs := d.publisher.Published(common.TopicSlotReserved)
	require.Len(t, packs, 2)
	require.Equal(t, testutil.Drawing1.ID, string(packs[1].Key))

	var event common.SlotReservedEvent
	require.NoError(t, json.Unmarshal(packs[1].Msg, &event))
	require.Equal(t, "B", event.Holder)
	require.Equal(t, []int{7}, event.Numbers)
}

func Test_reservationDomain_Reserve_Invalid(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	tests := []struct {
		name string
		req  *model.ReserveSlotRequest
		code errorx.Code
	}{
		{
			name: "number is zero",
			req:  &model.ReserveSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 0, Holder: "A"},
			code: errorx.BadRequest,
		},
		{
			name: "number is out of range",
			req:  &model.ReserveSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 101, Holder: "A"},
			code: errorx.BadRequest,
		},
		{
			name: "no holder",
			req:  &model.ReserveSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 1},
			code: errorx.BadRequest,
		},
		{
			name: "negative ttl",
			req:  &model.ReserveSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 1, Holder: "A", TTLMinutes: -1},
			code: errorx.BadRequest,
		},
		{
			name: "unknown drawing",
			req:  &model.ReserveSlotRequest{DrawingID: "unknown", Number: 1, Holder: "A"},
			code: errorx.NotFound,
		},
		{
			name: "ended drawing",
			req:  &model.ReserveSlotRequest{DrawingID: testutil.Drawing2.ID, Number: 1, Holder: "A"},
			code: errorx.DrawingEnded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.reservation.Reserve(ctx, tt.req)
			require.Error(t, err)
			require.True(t, errorx.Is(err, tt.code), "got %v", err)
		})
	}
}

func Test_reservationDomain_Reserve_ClampTTL(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	resp, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
		DrawingID:  testutil.Drawing1.ID,
		Number:     1,
		Holder:     "A",
		TTLMinutes: 24 * 60,
	})
	require.NoError(t, err)
	require.Equal(t, testutil.MockNow.Add(time.Hour).Format(model.DefaultTimeLayout), resp.ExpiresAt)
}

func Test_reservationDomain_Reserve_Concurrent(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	var succeeded, failed atomic.Int32
	g := errgroup.Group{}
	for i := 0; i < 20; i++ {
		holder := string(rune('a' + i))
		g.Go(func() error {
			_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
				DrawingID: testutil.Drawing1.ID,
				Number:    42,
				Holder:    holder,
			})
			if err == nil {
				succeeded.Add(1)
				return nil
			}

			if errorx.Is(err, errorx.SlotUnavailable) {
				failed.Add(1)
				return nil
			}

			return err
		})
	}

	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), succeeded.Load())
	require.Equal(t, int32(19), failed.Load())
}

func Test_reservationDomain_Reserve_HoldLimit(t *testing.T) {
	ctx := testutil.NewMockContext()
	d := newTestDomains(ctx)

	drawing, err := d.drawing.Create(ctx, &model.CreateDrawingRequest{
		Title:         "Limited",
		HostID:        "host",
		TotalSlots:    10,
		EndAt:         testutil.MockNow.Add(time.Hour),
		WinnersAmount: 1,
		Rules:         model.DrawingRules{MaxHoldsPerHolder: 2},
	})
	require.NoError(t, err)

	for _, n := range []int{1, 2} {
		_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{DrawingID: drawing.ID, Number: n, Holder: "A"})
		require.NoError(t, err)
	}

	// A third hold exceeds the limit.
	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{DrawingID: drawing.ID, Number: 3, Holder: "A"})
	require.True(t, errorx.Is(err, errorx.SlotUnavailable))

	// Extending a held slot is still allowed.
	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{DrawingID: drawing.ID, Number: 2, Holder: "A"})
	require.NoError(t, err)

	// Other holders are not limited by A.
	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{DrawingID: drawing.ID, Number: 3, Holder: "B"})
	require.NoError(t, err)

	_, err = d.reservation.ReserveRandom(ctx, &model.ReserveRandomSlotsRequest{
		DrawingID: drawing.ID, Holder: "A", Count: 1,
	})
	require.True(t, errorx.Is(err, errorx.SlotUnavailable))
}

func Test_reservationDomain_Confirm(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	participant, err := d.participant.Register(ctx, &model.RegisterParticipantRequest{
		DrawingID: testutil.Drawing1.ID,
		Name:      "Trent",
	})
	require.NoError(t, err)

	for _, n := range []int{1, 2} {
		_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
			DrawingID: testutil.Drawing1.ID, Number: n, Holder: "A",
		})
		require.NoError(t, err)
	}

	// Slot 3 is not reserved, nothing is confirmed.
	_, err = d.reservation.Confirm(ctx, &model.ConfirmSlotsRequest{
		DrawingID:     testutil.Drawing1.ID,
		Numbers:       []int{1, 2, 3},
		Holder:        "A",
		ParticipantID: participant.ID,
	})
	require.True(t, errorx.Is(err, errorx.ReservationExpiredOrMismatched))

	slots, err := d.stats.GetSlotsByNumbers(ctx, &model.GetSlotsByNumbersRequest{
		DrawingID: testutil.Drawing1.ID, Numbers: []int{1, 2},
	})
	require.NoError(t, err)
	for _, slot := range slots.Slots {
		require.Equal(t, "reserved", slot.Status)
	}

	// Another holder cannot confirm A's reservations.
	_, err = d.reservation.Confirm(ctx, &model.ConfirmSlotsRequest{
		DrawingID:     testutil.Drawing1.ID,
		Numbers:       []int{1},
		Holder:        "B",
		ParticipantID: participant.ID,
	})
	require.True(t, errorx.Is(err, errorx.ReservationExpiredOrMismatched))

	resp, err := d.reservation.Confirm(ctx, &model.ConfirmSlotsRequest{
		DrawingID:     testutil.Drawing1.ID,
		Numbers:       []int{1, 2},
		Holder:        "A",
		ParticipantID: participant.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)

	got, err := d.participant.Get(ctx, &model.GetParticipantRequest{ID: participant.ID})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, got.Participant.Numbers)

	// Taken slots are never released.
	released, err := d.reservation.Release(ctx, &model.ReleaseSlotsRequest{
		DrawingID: testutil.Drawing1.ID, Numbers: []int{1, 2},
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), released.ReleasedCount)

	require.Len(t, d.publisher.Published(common.TopicSlotConfirmed), 1)
}

func Test_reservationDomain_Confirm_Expired(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	participant, err := d.participant.Register(ctx, &model.RegisterParticipantRequest{
		DrawingID: testutil.Drawing1.ID,
		Name:      "Trent",
	})
	require.NoError(t, err)

	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
		DrawingID: testutil.Drawing1.ID, Number: 9, Holder: "A", TTLMinutes: 1,
	})
	require.NoError(t, err)

	d.clock.Advance(time.Minute)

	_, err = d.reservation.Confirm(ctx, &model.ConfirmSlotsRequest{
		DrawingID:     testutil.Drawing1.ID,
		Numbers:       []int{9},
		Holder:        "A",
		ParticipantID: participant.ID,
	})
	require.True(t, errorx.Is(err, errorx.ReservationExpiredOrMismatched))

	// A participant of another drawing cannot confirm.
	_, err = d.reservation.Confirm(ctx, &model.ConfirmSlotsRequest{
		DrawingID:     testutil.Drawing1.ID,
		Numbers:       []int{9},
		Holder:        "A",
		ParticipantID: testutil.Participant2s[0].ID,
	})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_reservationDomain_Release(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	for _, n := range []int{4, 5} {
		_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
			DrawingID: testutil.Drawing1.ID, Number: n, Holder: "A",
		})
		require.NoError(t, err)
	}

	resp, err := d.reservation.Release(ctx, &model.ReleaseSlotsRequest{
		DrawingID: testutil.Drawing1.ID, Numbers: []int{4, 5, 6},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.ReleasedCount)

	// Releasing again is a no-op.
	resp, err = d.reservation.Release(ctx, &model.ReleaseSlotsRequest{
		DrawingID: testutil.Drawing1.ID, Numbers: []int{4, 5},
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.ReleasedCount)
	require.Len(t, d.publisher.Published(common.TopicSlotReleased), 1)

	_, err = d.reservation.Release(ctx, &model.ReleaseSlotsRequest{
		DrawingID: testutil.Drawing1.ID, Numbers: []int{4, 4},
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.reservation.Release(ctx, &model.ReleaseSlotsRequest{DrawingID: testutil.Drawing1.ID})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_reservationDomain_Release_Holder(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	reserve := func(number int, holder string, ttl int) {
		_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
			DrawingID: testutil.Drawing1.ID, Number: number, Holder: holder, TTLMinutes: ttl,
		})
		require.NoError(t, err)
	}

	reserve(1, "A", 10)
	reserve(2, "B", 10)
	reserve(3, "B", 1)
	d.clock.Advance(2 * time.Minute)

	// A releases its own hold and the expired hold of B, not the live one.
	resp, err := d.reservation.Release(ctx, &model.ReleaseSlotsRequest{
		DrawingID: testutil.Drawing1.ID, Numbers: []int{1, 2, 3, 4}, Holder: "A",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.ReleasedCount)

	slot, err := d.reservation.GetSlot(ctx, &model.GetSlotRequest{DrawingID: testutil.Drawing1.ID, Number: 2})
	require.NoError(t, err)
	require.Equal(t, "reserved", slot.Slot.Status)

	for _, n := range []int{1, 3} {
		slot, err := d.reservation.GetSlot(ctx, &model.GetSlotRequest{DrawingID: testutil.Drawing1.ID, Number: n})
		require.NoError(t, err)
		require.Equal(t, "available", slot.Slot.Status)
	}

	require.Len(t, d.publisher.Published(common.TopicSlotReleased), 1)
}

func Test_reservationDomain_ReserveRandom(t *testing.T) {
	ctx := testutil.NewMockContext()
	d := newTestDomains(ctx)

	drawing, err := d.drawing.Create(ctx, &model.CreateDrawingRequest{
		Title:         "Random numbers",
		HostID:        "host",
		TotalSlots:    5,
		EndAt:         testutil.MockNow.Add(time.Hour),
		WinnersAmount: 1,
		RandomNumber:  true,
	})
	require.NoError(t, err)

	// Picking a number is not allowed.
	_, err = d.reservation.Reserve(ctx, &model.ReserveSlotRequest{DrawingID: drawing.ID, Number: 1, Holder: "A"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	resp, err := d.reservation.ReserveRandom(ctx, &model.ReserveRandomSlotsRequest{
		DrawingID: drawing.ID, Holder: "A", Count: 3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Numbers, 3)

	numbers := append([]int{}, resp.Numbers...)
	sort.Ints(numbers)
	for i := 1; i < len(numbers); i++ {
		require.NotEqual(t, numbers[i-1], numbers[i])
	}
	for _, n := range numbers {
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 5)
	}

	// Only two slots are left, nothing is reserved for B.
	_, err = d.reservation.ReserveRandom(ctx, &model.ReserveRandomSlotsRequest{
		DrawingID: drawing.ID, Holder: "B", Count: 3,
	})
	require.True(t, errorx.Is(err, errorx.SlotUnavailable))

	stats, err := d.stats.GetStats(ctx, &model.GetStatsRequest{DrawingID: drawing.ID})
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Stats.Reserved)
	require.Equal(t, int64(2), stats.Stats.Available)

	_, err = d.reservation.ReserveRandom(ctx, &model.ReserveRandomSlotsRequest{
		DrawingID: drawing.ID, Holder: "B", Count: 6,
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_reservationDomain_SweepExpired(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	for _, n := range []int{1, 2, 3} {
		_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
			DrawingID: testutil.Drawing1.ID, Number: n, Holder: "A", TTLMinutes: n,
		})
		require.NoError(t, err)
	}

	d.clock.Advance(2 * time.Minute)

	count, err := d.reservation.SweepExpired(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = d.reservation.SweepExpired(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}
