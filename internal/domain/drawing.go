package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/enum"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const maxTotalSlots = 100000

type DrawingDomain interface {
	Create(context.Context, *model.CreateDrawingRequest) (*model.CreateDrawingResponse, error)
	Get(context.Context, *model.GetDrawingRequest) (*model.GetDrawingResponse, error)
	Update(context.Context, *model.UpdateDrawingRequest) (*model.UpdateDrawingResponse, error)
}

type drawingDomain struct {
	drawingRepo  repository.DrawingRepository
	slotRepo     repository.SlotRepository
	drawingCache drawingcache.Cache
	clock        clockwork.Clock
}

func NewDrawingDomain(
	drawingRepo repository.DrawingRepository,
	slotRepo repository.SlotRepository,
	drawingCache drawingcache.Cache,
	clock clockwork.Clock,
) *drawingDomain {
	return &drawingDomain{
		drawingRepo:  drawingRepo,
		slotRepo:     slotRepo,
		drawingCache: drawingCache,
		clock:        clock,
	}
}

func (d *drawingDomain) Create(
	ctx context.Context, req *model.CreateDrawingRequest,
) (*model.CreateDrawingResponse, error) {
	if req.TotalSlots < 1 || req.TotalSlots > maxTotalSlots {
		return nil, errorx.New(errorx.BadRequest, "Total slots must be in range [1, %d]", maxTotalSlots)
	}

	drawing := &entity.Drawing{
		Base:       entity.Base{ID: uuid.NewString()},
		HostID:     req.HostID,
		TotalSlots: req.TotalSlots,
	}

	err := applyDrawingSettings(drawing, d.clock.Now().UTC(), drawingSettings{
		Title:         req.Title,
		EndAt:         req.EndAt,
		SelectionMode: req.SelectionMode,
		WinnersAmount: req.WinnersAmount,
		RandomNumber:  req.RandomNumber,
		AutoSelect:    req.AutoSelect,
		Rules:         req.Rules,
	})
	if err != nil {
		return nil, err
	}

	slots := make([]entity.Slot, 0, drawing.TotalSlots)
	for n := 1; n <= drawing.TotalSlots; n++ {
		slots = append(slots, entity.Slot{
			DrawingID: drawing.ID,
			Number:    n,
			Status:    entity.SlotAvailable,
		})
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.drawingRepo.Create(ctx, drawing); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create drawing: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.slotRepo.CreateBatch(ctx, slots); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create slots: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit drawing: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateDrawingResponse{ID: drawing.ID}, nil
}

func (d *drawingDomain) Get(
	ctx context.Context, req *model.GetDrawingRequest,
) (*model.GetDrawingResponse, error) {
	drawing, err := getDrawing(ctx, d.drawingCache, req.ID)
	if err != nil {
		return nil, err
	}

	rules, err := decodeRules(ctx, drawing)
	if err != nil {
		return nil, err
	}

	return &model.GetDrawingResponse{
		Drawing: model.ConvertDrawing(drawing, rules, d.clock.Now().UTC()),
	}, nil
}

// Update applies an administrative edit. It is only allowed before any slot of
// the drawing is claimed, which the repository checks in the same statement
// as the write.
func (d *drawingDomain) Update(
	ctx context.Context, req *model.UpdateDrawingRequest,
) (*model.UpdateDrawingResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require drawing id")
	}

	drawing, err := d.drawingRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	now := d.clock.Now().UTC()
	err = applyDrawingSettings(drawing, now, drawingSettings{
		Title:         req.Title,
		EndAt:         req.EndAt,
		SelectionMode: req.SelectionMode,
		WinnersAmount: req.WinnersAmount,
		RandomNumber:  req.RandomNumber,
		AutoSelect:    req.AutoSelect,
		Rules:         req.Rules,
	})
	if err != nil {
		return nil, err
	}

	if err := d.drawingRepo.UpdateIfUnclaimed(ctx, drawing, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Conflict,
				"Drawing cannot be edited once a slot is claimed or winners are selected")
		}

		xcontext.Logger(ctx).Errorf("Cannot update drawing: %v", err)
		return nil, errorx.Unknown
	}

	d.drawingCache.Invalidate(ctx, drawing.ID)
	return &model.UpdateDrawingResponse{}, nil
}

type drawingSettings struct {
	Title         string
	EndAt         time.Time
	SelectionMode string
	WinnersAmount int
	RandomNumber  bool
	AutoSelect    bool
	Rules         model.DrawingRules
}

// applyDrawingSettings validates the editable settings against the slot count
// of the drawing and copies them into it.
func applyDrawingSettings(drawing *entity.Drawing, now time.Time, settings drawingSettings) error {
	if settings.Title == "" {
		return errorx.New(errorx.BadRequest, "Require title")
	}

	if !settings.EndAt.After(now) {
		return errorx.New(errorx.BadRequest, "End time must be in the future")
	}

	mode := entity.RandomParticipant
	if settings.SelectionMode != "" {
		var err error
		mode, err = enum.ToEnum[entity.SelectionMode](settings.SelectionMode)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Invalid selection mode, expected one of %s",
				strings.Join(enum.Values[entity.SelectionMode](), ", "))
		}
	}

	if settings.WinnersAmount < 1 || settings.WinnersAmount > drawing.TotalSlots {
		return errorx.New(errorx.BadRequest, "Winners amount must be in range [1, %d]", drawing.TotalSlots)
	}

	rules := entity.DrawingRules{
		MaxHoldsPerHolder: settings.Rules.MaxHoldsPerHolder,
		NumberMin:         settings.Rules.NumberMin,
		NumberMax:         settings.Rules.NumberMax,
	}

	if rules.MaxHoldsPerHolder < 0 {
		return errorx.New(errorx.BadRequest, "Max holds per holder must not be negative")
	}

	min, max := rules.NumberRange(drawing.TotalSlots)
	if min < 1 || max > drawing.TotalSlots || min > max {
		return errorx.New(errorx.BadRequest, "Number range must be inside [1, %d]", drawing.TotalSlots)
	}

	if mode == entity.RandomNumber && settings.WinnersAmount > max-min+1 {
		return errorx.New(errorx.BadRequest, "Winners amount exceeds the number range")
	}

	drawing.Title = settings.Title
	drawing.EndAt = settings.EndAt.UTC()
	drawing.SelectionMode = mode
	drawing.WinnersAmount = settings.WinnersAmount
	drawing.RandomNumber = settings.RandomNumber
	drawing.AutoSelect = settings.AutoSelect
	drawing.SetRules(rules)

	return nil
}
