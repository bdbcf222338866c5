package main

import (
	"os/signal"
	"syscall"

	"github.com/slotdraw/backend/internal/domain/cron"
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager(s.clock)
	cronJobManager.Register(cron.NewSweepReservationCronJob(
		s.drawingRepo, s.reservationDomain, s.clock, cfg.Reservation.SweepInterval.Duration))
	cronJobManager.Register(cron.NewAutoSelectWinnerCronJob(
		s.drawingRepo, s.winnerDomain, s.clock, cfg.Selection.AutoSelectInterval.Duration))

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(s.ctx)
	return nil
}
