package domain

import (
	"testing"

	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_participantDomain_Register(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	notEligible := false
	resp, err := d.participant.Register(ctx, &model.RegisterParticipantRequest{
		DrawingID: testutil.Drawing1.ID,
		Name:      "Victor",
		Contact:   "victor@example.com",
		Eligible:  &notEligible,
	})
	require.NoError(t, err)

	got, err := d.participant.Get(ctx, &model.GetParticipantRequest{ID: resp.ID})
	require.NoError(t, err)
	require.Equal(t, "Victor", got.Participant.Name)
	require.False(t, got.Participant.Eligible)
	require.Empty(t, got.Participant.Numbers)

	_, err = d.participant.Register(ctx, &model.RegisterParticipantRequest{DrawingID: testutil.Drawing1.ID})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.participant.Register(ctx, &model.RegisterParticipantRequest{
		DrawingID: testutil.Drawing2.ID, Name: "Late",
	})
	require.True(t, errorx.Is(err, errorx.DrawingEnded))

	_, err = d.participant.Get(ctx, &model.GetParticipantRequest{ID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_participantDomain_GetList(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)

	resp, err := d.participant.GetList(ctx, &model.GetParticipantsRequest{DrawingID: testutil.Drawing3.ID})
	require.NoError(t, err)
	require.Len(t, resp.Participants, len(testutil.Participant3s))

	for _, p := range resp.Participants {
		if p.ID == testutil.Participant3s[0].ID {
			require.Equal(t, []int{1, 11, 21}, p.Numbers)
		}
	}

	resp, err = d.participant.GetList(ctx, &model.GetParticipantsRequest{
		DrawingID: testutil.Drawing3.ID, Offset: 5, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Participants, 2)

	_, err = d.participant.GetList(ctx, &model.GetParticipantsRequest{DrawingID: testutil.Drawing3.ID, Offset: -1})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}
