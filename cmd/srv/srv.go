package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/config"
	"github.com/slotdraw/backend/internal/domain"
	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/migration"
	"github.com/slotdraw/backend/pkg/kafka"
	"github.com/slotdraw/backend/pkg/logger"
	"github.com/slotdraw/backend/pkg/pubsub"
	"github.com/slotdraw/backend/pkg/router"
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/slotdraw/backend/pkg/xnats"
	"github.com/slotdraw/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stopper interface {
	Stop(ctx context.Context) error
}

type srv struct {
	app *cli.App
	ctx context.Context

	clock     clockwork.Clock
	publisher pubsub.Publisher
	stoppers  []stopper

	drawingRepo     repository.DrawingRepository
	slotRepo        repository.SlotRepository
	participantRepo repository.ParticipantRepository
	winnerRepo      repository.WinnerRepository

	drawingCache drawingcache.Cache

	drawingDomain     domain.DrawingDomain
	reservationDomain domain.ReservationDomain
	statsDomain       domain.StatsDomain
	participantDomain domain.ParticipantDomain
	winnerDomain      domain.WinnerDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(cctx.Context, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	s.clock = clockwork.NewRealClock()

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return err
	}
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)

	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:               cfg.ConnectionString(),
			DefaultStringSize: 191,
		})
	case "postgres":
		dialector = postgres.Open(cfg.ConnectionString())
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return s.clock.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows only one writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return migration.Migrate(s.ctx)
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx)
	switch {
	case cfg.Kafka.Addr != "":
		p, err := kafka.NewPublisher(cfg.Kafka.ClientID, strings.Split(cfg.Kafka.Addr, ","))
		if err != nil {
			return err
		}

		s.publisher = p
		s.stoppers = append(s.stoppers, p)
	case cfg.Nats.URL != "":
		p, err := xnats.NewPublisher(s.ctx, cfg.Nats.URL, cfg.Nats.SubjectPrefix, xcontext.Logger(s.ctx))
		if err != nil {
			return err
		}

		s.publisher = p
		s.stoppers = append(s.stoppers, p)
	default:
		s.publisher = pubsub.NewLogPublisher()
	}

	return nil
}

func (s *srv) loadRepos() {
	s.drawingRepo = repository.NewDrawingRepository()
	s.slotRepo = repository.NewSlotRepository()
	s.participantRepo = repository.NewParticipantRepository()
	s.winnerRepo = repository.NewWinnerRepository()
}

func (s *srv) loadDrawingCache() error {
	cfg := xcontext.Configs(s.ctx).Redis
	if cfg.Addr == "" {
		s.drawingCache = drawingcache.NewLocalCache(s.drawingRepo, s.clock, cfg.DrawingTTL.Duration)
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.drawingCache = drawingcache.NewRedisCache(redisClient, s.drawingRepo, cfg.DrawingTTL.Duration)
	return nil
}

func (s *srv) loadDomains() {
	s.drawingDomain = domain.NewDrawingDomain(s.drawingRepo, s.slotRepo, s.drawingCache, s.clock)
	s.reservationDomain = domain.NewReservationDomain(
		s.slotRepo, s.participantRepo, s.drawingCache, s.publisher, s.clock)
	s.statsDomain = domain.NewStatsDomain(s.slotRepo, s.drawingCache, s.clock)
	s.participantDomain = domain.NewParticipantDomain(
		s.participantRepo, s.slotRepo, s.drawingCache, s.clock)
	s.winnerDomain = domain.NewWinnerDomain(
		s.drawingRepo, s.slotRepo, s.participantRepo, s.winnerRepo, s.drawingCache, s.publisher, s.clock)
}

// load prepares everything a long running command needs.
func (s *srv) load() error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	s.loadRepos()
	if err := s.loadDrawingCache(); err != nil {
		return err
	}

	s.loadDomains()
	return nil
}

func (s *srv) stop() {
	for _, st := range s.stoppers {
		if err := st.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot stop %T: %v", st, err)
		}
	}
}
