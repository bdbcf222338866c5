package cron

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/domain"
	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/xcontext"
)

const maxAutoSelectBackoff = 24 * time.Hour

// selectionFailure tracks a drawing whose selection parameters cannot be
// satisfied. It is retried with an exponential backoff until the host fixes
// the participants.
type selectionFailure struct {
	attempts int
	retryAt  time.Time
}

// AutoSelectWinnerCronJob selects the winners of ended drawings which have
// AutoSelect enabled.
type AutoSelectWinnerCronJob struct {
	drawingRepo  repository.DrawingRepository
	winnerDomain domain.WinnerDomain
	clock        clockwork.Clock
	interval     time.Duration

	// Only accessed by Do, which the manager never runs concurrently.
	failures map[string]*selectionFailure
}

func NewAutoSelectWinnerCronJob(
	drawingRepo repository.DrawingRepository,
	winnerDomain domain.WinnerDomain,
	clock clockwork.Clock,
	interval time.Duration,
) *AutoSelectWinnerCronJob {
	return &AutoSelectWinnerCronJob{
		drawingRepo:  drawingRepo,
		winnerDomain: winnerDomain,
		clock:        clock,
		interval:     interval,
		failures:     map[string]*selectionFailure{},
	}
}

func (job *AutoSelectWinnerCronJob) Do(ctx context.Context) {
	now := job.clock.Now().UTC()
	drawings, err := job.drawingRepo.GetEndedWithoutWinners(ctx, now, true)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ended drawings: %v", err)
		return
	}

	pending := map[string]struct{}{}
	for _, d := range drawings {
		pending[d.ID] = struct{}{}
		if f, ok := job.failures[d.ID]; ok && now.Before(f.retryAt) {
			continue
		}

		resp, err := job.winnerDomain.SelectWinners(ctx, &model.SelectWinnersRequest{DrawingID: d.ID})
		if err != nil {
			switch {
			case errorx.Is(err, errorx.InvalidSelectionParameters):
				job.backoff(ctx, d.ID, now, err)
			case errorx.Is(err, errorx.WinnersAlreadySelected):
				delete(job.failures, d.ID)
			default:
				xcontext.Logger(ctx).Errorf("Cannot auto select winners of drawing %s: %v", d.ID, err)
			}

			continue
		}

		delete(job.failures, d.ID)
		xcontext.Logger(ctx).Infof("Selected %d winners of drawing %s", len(resp.Winners), d.ID)
	}

	// Forget drawings which were selected by hand in the meantime.
	for id := range job.failures {
		if _, ok := pending[id]; !ok {
			delete(job.failures, id)
		}
	}
}

func (job *AutoSelectWinnerCronJob) backoff(ctx context.Context, drawingID string, now time.Time, err error) {
	f, ok := job.failures[drawingID]
	if !ok {
		f = &selectionFailure{}
		job.failures[drawingID] = f
	}
	f.attempts++

	delay := job.interval
	for i := 1; i < f.attempts && delay < maxAutoSelectBackoff; i++ {
		delay *= 2
	}
	if delay > maxAutoSelectBackoff {
		delay = maxAutoSelectBackoff
	}
	f.retryAt = now.Add(delay)

	xcontext.Logger(ctx).Warnf("Cannot auto select winners of drawing %s (attempt %d), retry at %s: %v",
		drawingID, f.attempts, f.retryAt.Format(time.RFC3339), err)
}

func (job *AutoSelectWinnerCronJob) RunNow() bool {
	return false
}

func (job *AutoSelectWinnerCronJob) Next() time.Time {
	return job.clock.Now().Add(job.interval)
}
