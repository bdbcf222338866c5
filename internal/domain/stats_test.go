package domain

import (
	"testing"
	"time"

	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_statsDomain_GetStats(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	resp, err := d.stats.GetStats(ctx, &model.GetStatsRequest{DrawingID: testutil.Drawing3.ID})
	require.NoError(t, err)
	require.Equal(t, int64(50), resp.Stats.Total)
	require.Equal(t, int64(26), resp.Stats.Available)
	require.Equal(t, int64(23), resp.Stats.Taken)
	require.Equal(t, int64(1), resp.Stats.Reserved)
	require.InDelta(t, 46, resp.Stats.PercentageTaken, 1e-9)
	require.Equal(t, "46.00", resp.Stats.PercentageTakenDisplay)

	// The reservation of slot 50 lapses after an hour.
	d.clock.Advance(time.Hour)
	resp, err = d.stats.GetStats(ctx, &model.GetStatsRequest{DrawingID: testutil.Drawing3.ID})
	require.NoError(t, err)
	require.Equal(t, int64(27), resp.Stats.Available)
	require.Equal(t, int64(0), resp.Stats.Reserved)
}

func Test_statsDomain_Invariant(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	for n := 1; n <= 30; n++ {
		_, err := d.reservation.Reserve(ctx, &model.ReserveSlotRequest{
			DrawingID: testutil.Drawing1.ID, Number: n, Holder: "A", TTLMinutes: n%3 + 1,
		})
		require.NoError(t, err)
	}

	for minute := 0; minute < 4; minute++ {
		resp, err := d.stats.GetStats(ctx, &model.GetStatsRequest{DrawingID: testutil.Drawing1.ID})
		require.NoError(t, err)

		stats := resp.Stats
		require.Equal(t, stats.Total, stats.Available+stats.Taken+stats.Reserved)
		require.Equal(t, int64(100), stats.Total)
		d.clock.Advance(time.Minute)
	}
}

func Test_statsDomain_GetSlotsPage(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	resp, err := d.stats.GetSlotsPage(ctx, &model.GetSlotsRequest{
		DrawingID: testutil.Drawing3.ID, Page: 5, PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 10)
	require.Equal(t, 41, resp.Slots[0].Number)
	require.Equal(t, "taken", resp.Slots[0].Status)
	require.Equal(t, testutil.Participant3s[6].ID, resp.Slots[0].ParticipantID)
	require.Equal(t, "reserved", resp.Slots[9].Status)
	require.NotEmpty(t, resp.Slots[9].ExpiresAt)
	require.Equal(t, int64(50), resp.Stats.Total)

	resp, err = d.stats.GetSlotsPage(ctx, &model.GetSlotsRequest{
		DrawingID: testutil.Drawing3.ID, Page: 6, PageSize: 10,
	})
	require.NoError(t, err)
	require.Empty(t, resp.Slots)

	_, err = d.stats.GetSlotsPage(ctx, &model.GetSlotsRequest{DrawingID: testutil.Drawing3.ID, Page: 0, PageSize: 10})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.stats.GetSlotsPage(ctx, &model.GetSlotsRequest{DrawingID: testutil.Drawing3.ID, Page: 1, PageSize: 1001})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}
