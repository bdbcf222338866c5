package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/slotdraw/backend/internal/middleware"
	"github.com/slotdraw/backend/pkg/prometheus"
	"github.com/slotdraw/backend/pkg/router"
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	defer s.stop()

	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(s.router.Handler()),
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime(s.clock))
	s.router.After(middleware.Logger())
	s.router.After(middleware.Prometheus(s.clock))

	s.router.Handle(http.MethodGet, "/metrics", prometheus.NewHandler(prometheus.NewRegistry(), xcontext.Logger(s.ctx)))
	s.router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Drawing API
	router.POST(s.router, "/createDrawing", s.drawingDomain.Create)
	router.POST(s.router, "/updateDrawing", s.drawingDomain.Update)
	router.GET(s.router, "/getDrawing", s.drawingDomain.Get)

	// Slot API
	router.POST(s.router, "/reserveSlot", s.reservationDomain.Reserve)
	router.POST(s.router, "/reserveRandomSlots", s.reservationDomain.ReserveRandom)
	router.POST(s.router, "/confirmSlots", s.reservationDomain.Confirm)
	router.POST(s.router, "/releaseSlots", s.reservationDomain.Release)
	router.GET(s.router, "/getSlot", s.reservationDomain.GetSlot)
	router.GET(s.router, "/getSlots", s.statsDomain.GetSlotsPage)
	router.GET(s.router, "/getSlotsByNumbers", s.statsDomain.GetSlotsByNumbers)
	router.GET(s.router, "/getStats", s.statsDomain.GetStats)

	// Participant API
	router.POST(s.router, "/registerParticipant", s.participantDomain.Register)
	router.POST(s.router, "/setParticipantEligibility", s.participantDomain.SetEligibility)
	router.GET(s.router, "/getParticipant", s.participantDomain.Get)
	router.GET(s.router, "/getParticipants", s.participantDomain.GetList)

	// Winner API
	router.POST(s.router, "/selectWinners", s.winnerDomain.SelectWinners)
	router.GET(s.router, "/getWinners", s.winnerDomain.GetWinners)
}
