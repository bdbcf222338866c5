package domain

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/xcontext"
)

type StatsDomain interface {
	GetStats(context.Context, *model.GetStatsRequest) (*model.GetStatsResponse, error)
	GetSlotsPage(context.Context, *model.GetSlotsRequest) (*model.GetSlotsResponse, error)
	GetSlotsByNumbers(context.Context, *model.GetSlotsByNumbersRequest) (*model.GetSlotsByNumbersResponse, error)
}

type statsDomain struct {
	slotRepo     repository.SlotRepository
	drawingCache drawingcache.Cache
	clock        clockwork.Clock
}

func NewStatsDomain(
	slotRepo repository.SlotRepository,
	drawingCache drawingcache.Cache,
	clock clockwork.Clock,
) *statsDomain {
	return &statsDomain{
		slotRepo:     slotRepo,
		drawingCache: drawingCache,
		clock:        clock,
	}
}

func (d *statsDomain) GetStats(
	ctx context.Context, req *model.GetStatsRequest,
) (*model.GetStatsResponse, error) {
	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	stats, err := d.statistic(ctx, drawing.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetStatsResponse{Stats: stats}, nil
}

func (d *statsDomain) GetSlotsPage(
	ctx context.Context, req *model.GetSlotsRequest,
) (*model.GetSlotsResponse, error) {
	maxPageSize := xcontext.Configs(ctx).Reservation.MaxPageSize
	if req.Page < 1 {
		return nil, errorx.New(errorx.BadRequest, "Page must be a positive number")
	}

	if req.PageSize < 1 || req.PageSize > maxPageSize {
		return nil, errorx.New(errorx.BadRequest, "Page size must be in range [1, %d]", maxPageSize)
	}

	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	now := d.clock.Now().UTC()
	slots, err := d.slotRepo.GetPage(ctx, drawing.ID, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get slots: %v", err)
		return nil, errorx.Unknown
	}

	stats, err := d.statisticAt(ctx, drawing.ID, now)
	if err != nil {
		return nil, err
	}

	return &model.GetSlotsResponse{
		Page:     req.Page,
		PageSize: req.PageSize,
		Slots:    model.ConvertSlots(slots, now),
		Stats:    stats,
	}, nil
}

func (d *statsDomain) GetSlotsByNumbers(
	ctx context.Context, req *model.GetSlotsByNumbersRequest,
) (*model.GetSlotsByNumbersResponse, error) {
	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	if err := checkNumbers(drawing, req.Numbers, xcontext.Configs(ctx).Reservation.MaxPageSize); err != nil {
		return nil, err
	}

	slots, err := d.slotRepo.GetByNumbers(ctx, drawing.ID, req.Numbers)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get slots: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetSlotsByNumbersResponse{
		Slots: model.ConvertSlots(slots, d.clock.Now().UTC()),
	}, nil
}

func (d *statsDomain) statistic(ctx context.Context, drawingID string) (model.Stats, error) {
	return d.statisticAt(ctx, drawingID, d.clock.Now().UTC())
}

func (d *statsDomain) statisticAt(ctx context.Context, drawingID string, now time.Time) (model.Stats, error) {
	statistic, err := d.slotRepo.Statistic(ctx, drawingID, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get slot statistic: %v", err)
		return model.Stats{}, errorx.Unknown
	}

	return model.ConvertStats(statistic.Total, statistic.Taken, statistic.Reserved), nil
}
