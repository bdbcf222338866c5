package cron

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/domain"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/xcontext"
)

// SweepReservationCronJob clears the expired reservations of open drawings.
// Reads already treat those reservations as available, the sweep keeps the
// stored rows close to that view.
type SweepReservationCronJob struct {
	drawingRepo       repository.DrawingRepository
	reservationDomain domain.ReservationDomain
	clock             clockwork.Clock
	interval          time.Duration
}

func NewSweepReservationCronJob(
	drawingRepo repository.DrawingRepository,
	reservationDomain domain.ReservationDomain,
	clock clockwork.Clock,
	interval time.Duration,
) *SweepReservationCronJob {
	return &SweepReservationCronJob{
		drawingRepo:       drawingRepo,
		reservationDomain: reservationDomain,
		clock:             clock,
		interval:          interval,
	}
}

func (job *SweepReservationCronJob) Do(ctx context.Context) {
	drawings, err := job.drawingRepo.GetOpen(ctx, job.clock.Now().UTC())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get open drawings: %v", err)
		return
	}

	for _, d := range drawings {
		count, err := job.reservationDomain.SweepExpired(ctx, d.ID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot sweep expired reservations of drawing %s: %v", d.ID, err)
			continue
		}

		if count > 0 {
			xcontext.Logger(ctx).Debugf("Swept %d expired reservations of drawing %s", count, d.ID)
		}
	}
}

func (job *SweepReservationCronJob) RunNow() bool {
	return true
}

func (job *SweepReservationCronJob) Next() time.Time {
	return job.clock.Now().Add(job.interval)
}
