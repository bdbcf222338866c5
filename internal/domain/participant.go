package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const defaultParticipantLimit = 50

type ParticipantDomain interface {
	Register(context.Context, *model.RegisterParticipantRequest) (*model.RegisterParticipantResponse, error)
	Get(context.Context, *model.GetParticipantRequest) (*model.GetParticipantResponse, error)
	GetList(context.Context, *model.GetParticipantsRequest) (*model.GetParticipantsResponse, error)
	SetEligibility(context.Context, *model.SetParticipantEligibilityRequest) (*model.SetParticipantEligibilityResponse, error)
}

type participantDomain struct {
	participantRepo repository.ParticipantRepository
	slotRepo        repository.SlotRepository
	drawingCache    drawingcache.Cache
	clock           clockwork.Clock
}

func NewParticipantDomain(
	participantRepo repository.ParticipantRepository,
	slotRepo repository.SlotRepository,
	drawingCache drawingcache.Cache,
	clock clockwork.Clock,
) *participantDomain {
	return &participantDomain{
		participantRepo: participantRepo,
		slotRepo:        slotRepo,
		drawingCache:    drawingCache,
		clock:           clock,
	}
}

func (d *participantDomain) Register(
	ctx context.Context, req *model.RegisterParticipantRequest,
) (*model.RegisterParticipantResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Require name")
	}

	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	if drawing.HasEnded(d.clock.Now().UTC()) {
		return nil, errorx.New(errorx.DrawingEnded, "Drawing has ended")
	}

	eligible := true
	if req.Eligible != nil {
		eligible = *req.Eligible
	}

	participant := &entity.Participant{
		Base:      entity.Base{ID: uuid.NewString()},
		DrawingID: drawing.ID,
		Name:      req.Name,
		Contact:   req.Contact,
		Eligible:  eligible,
	}

	if err := d.participantRepo.Create(ctx, participant); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create participant: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RegisterParticipantResponse{ID: participant.ID}, nil
}

func (d *participantDomain) Get(
	ctx context.Context, req *model.GetParticipantRequest,
) (*model.GetParticipantResponse, error) {
	participant, err := d.getParticipant(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	numbers, err := d.takenNumbers(ctx, participant.DrawingID)
	if err != nil {
		return nil, err
	}

	return &model.GetParticipantResponse{
		Participant: model.ConvertParticipant(participant, numbers[participant.ID]),
	}, nil
}

func (d *participantDomain) GetList(
	ctx context.Context, req *model.GetParticipantsRequest,
) (*model.GetParticipantsResponse, error) {
	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	maxLimit := xcontext.Configs(ctx).Reservation.MaxPageSize
	if req.Limit == 0 {
		req.Limit = defaultParticipantLimit
	}

	if req.Limit < 0 || req.Limit > maxLimit {
		return nil, errorx.New(errorx.BadRequest, "Limit must be in range [1, %d]", maxLimit)
	}

	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	participants, err := d.participantRepo.GetListByDrawingID(ctx, drawing.ID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	numbers, err := d.takenNumbers(ctx, drawing.ID)
	if err != nil {
		return nil, err
	}

	result := []model.Participant{}
	for i := range participants {
		result = append(result, model.ConvertParticipant(&participants[i], numbers[participants[i].ID]))
	}

	return &model.GetParticipantsResponse{Participants: result}, nil
}

func (d *participantDomain) SetEligibility(
	ctx context.Context, req *model.SetParticipantEligibilityRequest,
) (*model.SetParticipantEligibilityResponse, error) {
	participant, err := d.getParticipant(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.participantRepo.UpdateEligibility(ctx, participant.ID, req.Eligible); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.WinnersAlreadySelected, "Winners of this drawing are already selected")
		}

		xcontext.Logger(ctx).Errorf("Cannot update eligibility: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SetParticipantEligibilityResponse{}, nil
}

func (d *participantDomain) getParticipant(ctx context.Context, id string) (*entity.Participant, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Require participant id")
	}

	participant, err := d.participantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found participant")
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	return participant, nil
}

// takenNumbers groups the taken numbers of a drawing by participant. Numbers
// are only stored on the slots.
func (d *participantDomain) takenNumbers(ctx context.Context, drawingID string) (map[string][]int, error) {
	slots, err := d.slotRepo.GetTaken(ctx, drawingID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get taken slots: %v", err)
		return nil, errorx.Unknown
	}

	result := map[string][]int{}
	for _, slot := range slots {
		result[slot.ParticipantID.String] = append(result[slot.ParticipantID.String], slot.Number)
	}

	return result, nil
}
