package domain

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/testutil"
)

type testDomains struct {
	clock       *clockwork.FakeClock
	publisher   *testutil.MockPublisher
	reservation *reservationDomain
	stats       *statsDomain
	drawing     *drawingDomain
	participant *participantDomain
	winner      *winnerDomain
}

// newTestDomains wires every domain on the same repositories, cache and fake
// clock, the way the api server does.
func newTestDomains(ctx context.Context) *testDomains {
	clock := testutil.NewFakeClock()
	publisher := &testutil.MockPublisher{}

	drawingRepo := repository.NewDrawingRepository()
	slotRepo := repository.NewSlotRepository()
	participantRepo := repository.NewParticipantRepository()
	winnerRepo := repository.NewWinnerRepository()
	cache := drawingcache.NewLocalCache(drawingRepo, clock, time.Minute)

	return &testDomains{
		clock:       clock,
		publisher:   publisher,
		reservation: NewReservationDomain(slotRepo, participantRepo, cache, publisher, clock),
		stats:       NewStatsDomain(slotRepo, cache, clock),
		drawing:     NewDrawingDomain(drawingRepo, slotRepo, cache, clock),
		participant: NewParticipantDomain(participantRepo, slotRepo, cache, clock),
		winner: NewWinnerDomain(
			drawingRepo, slotRepo, participantRepo, winnerRepo, cache, publisher, clock),
	}
}
