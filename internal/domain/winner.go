package domain

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/slotdraw/backend/internal/common"
	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/domain/selection"
	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/internal/model"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/pubsub"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type WinnerDomain interface {
	SelectWinners(context.Context, *model.SelectWinnersRequest) (*model.SelectWinnersResponse, error)
	GetWinners(context.Context, *model.GetWinnersRequest) (*model.GetWinnersResponse, error)
}

type winnerDomain struct {
	drawingRepo     repository.DrawingRepository
	slotRepo        repository.SlotRepository
	participantRepo repository.ParticipantRepository
	winnerRepo      repository.WinnerRepository
	drawingCache    drawingcache.Cache
	publisher       pubsub.Publisher
	clock           clockwork.Clock
}

func NewWinnerDomain(
	drawingRepo repository.DrawingRepository,
	slotRepo repository.SlotRepository,
	participantRepo repository.ParticipantRepository,
	winnerRepo repository.WinnerRepository,
	drawingCache drawingcache.Cache,
	publisher pubsub.Publisher,
	clock clockwork.Clock,
) *winnerDomain {
	return &winnerDomain{
		drawingRepo:     drawingRepo,
		slotRepo:        slotRepo,
		participantRepo: participantRepo,
		winnerRepo:      winnerRepo,
		drawingCache:    drawingCache,
		publisher:       publisher,
		clock:           clock,
	}
}

// winner is one selected participant before it is persisted.
type winner struct {
	participant entity.Participant
	number      int
}

// SelectWinners runs the selection of an ended drawing once. The drawing is
// moved into the winners-selected state at the start of the transaction, so a
// concurrent or repeated run fails with WinnersAlreadySelected and a failed run
// leaves the drawing untouched.
func (d *winnerDomain) SelectWinners(
	ctx context.Context, req *model.SelectWinnersRequest,
) (*model.SelectWinnersResponse, error) {
	if req.DrawingID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require drawing id")
	}

	drawing, err := d.drawingRepo.GetByID(ctx, req.DrawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	now := d.clock.Now().UTC()
	if !drawing.HasEnded(now) {
		d.countRun(drawing, "not_ended")
		return nil, errorx.New(errorx.DrawingNotEnded, "Drawing has not ended yet")
	}

	if drawing.WinnersSelectedAt.Valid {
		d.countRun(drawing, "already_selected")
		return nil, errorx.New(errorx.WinnersAlreadySelected, "Winners of this drawing are already selected")
	}

	seed, err := selection.NewSeed()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate seed: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.drawingRepo.MarkWinnersSelected(ctx, drawing.ID, now, seed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.countRun(drawing, "already_selected")
			return nil, errorx.New(errorx.WinnersAlreadySelected, "Winners of this drawing are already selected")
		}

		xcontext.Logger(ctx).Errorf("Cannot mark winners selected: %v", err)
		return nil, errorx.Unknown
	}

	var winners []winner
	switch drawing.SelectionMode {
	case entity.RandomNumber:
		winners, err = d.selectRandomNumbers(ctx, drawing, seed)
	default:
		winners, err = d.selectRandomParticipants(ctx, drawing, seed)
	}
	if err != nil {
		if errorx.Is(err, errorx.InvalidSelectionParameters) {
			d.countRun(drawing, "invalid")
		}

		return nil, err
	}

	records := []entity.WinnerRecord{}
	participantIDs := []string{}
	result := []model.Winner{}
	for i, w := range winners {
		record := entity.WinnerRecord{
			SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
			DrawingID:     drawing.ID,
			ParticipantID: w.participant.ID,
			Rank:          i + 1,
			SelectedAt:    now,
		}

		if drawing.SelectionMode == entity.RandomNumber {
			record.Number = sql.NullInt64{Int64: int64(w.number), Valid: true}
		}

		records = append(records, record)
		participantIDs = append(participantIDs, w.participant.ID)
		result = append(result, model.ConvertWinner(&record, w.participant.Name))
	}

	if err := d.winnerRepo.CreateBatch(ctx, records); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create winner records: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.participantRepo.MarkWinners(ctx, drawing.ID, participantIDs); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark winners: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit winners: %v", err)
		return nil, errorx.Unknown
	}

	d.drawingCache.Invalidate(ctx, drawing.ID)
	d.countRun(drawing, "selected")
	common.Publish(ctx, d.publisher, common.TopicWinnersSelected, drawing.ID, common.WinnersSelectedEvent{
		DrawingID:      drawing.ID,
		Mode:           string(drawing.SelectionMode),
		ParticipantIDs: participantIDs,
		SelectedAt:     now,
	})

	return &model.SelectWinnersResponse{Winners: result}, nil
}

// selectRandomParticipants shuffles the eligible participants and takes the
// first ones. The rank is the draw order.
func (d *winnerDomain) selectRandomParticipants(
	ctx context.Context, drawing *entity.Drawing, seed int64,
) ([]winner, error) {
	participants, err := d.participantRepo.GetEligible(ctx, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get eligible participants: %v", err)
		return nil, errorx.Unknown
	}

	if err := validateSelection(drawing.WinnersAmount, len(participants)); err != nil {
		return nil, err
	}

	selection.Shuffle(selection.NewRand(seed), participants)

	winners := []winner{}
	for _, p := range participants[:drawing.WinnersAmount] {
		winners = append(winners, winner{participant: p})
	}

	return winners, nil
}

// selectRandomNumbers draws unique numbers in the configured range. A number
// only counts when its slot is taken by an eligible participant who has not
// won yet. The rank is the position in ascending number order.
func (d *winnerDomain) selectRandomNumbers(
	ctx context.Context, drawing *entity.Drawing, seed int64,
) ([]winner, error) {
	rules, err := decodeRules(ctx, drawing)
	if err != nil {
		return nil, err
	}

	min, max := rules.NumberRange(drawing.TotalSlots)
	if min < 1 || max > drawing.TotalSlots || min > max {
		return nil, errorx.New(errorx.InvalidSelectionParameters,
			"Number range [%d, %d] is outside of the drawing slots", min, max)
	}

	participants, err := d.participantRepo.GetEligible(ctx, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get eligible participants: %v", err)
		return nil, errorx.Unknown
	}

	eligible := map[string]entity.Participant{}
	for _, p := range participants {
		eligible[p.ID] = p
	}

	slots, err := d.slotRepo.GetTaken(ctx, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get taken slots: %v", err)
		return nil, errorx.Unknown
	}

	holders := map[int]string{}
	pool := map[string]struct{}{}
	for _, slot := range slots {
		if slot.Number < min || slot.Number > max {
			continue
		}

		if _, ok := eligible[slot.ParticipantID.String]; !ok {
			continue
		}

		holders[slot.Number] = slot.ParticipantID.String
		pool[slot.ParticipantID.String] = struct{}{}
	}

	if err := validateSelection(drawing.WinnersAmount, len(pool)); err != nil {
		return nil, err
	}

	won := map[string]struct{}{}
	numbers, err := selection.GenerateUniqueRandomNumbersFunc(
		selection.NewRand(seed), min, max, drawing.WinnersAmount,
		func(n int) bool {
			id, ok := holders[n]
			if !ok {
				return false
			}

			if _, ok := won[id]; ok {
				return false
			}

			won[id] = struct{}{}
			return true
		},
	)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate winning numbers: %v", err)
		return nil, errorx.Unknown
	}

	winners := []winner{}
	for _, n := range numbers {
		winners = append(winners, winner{participant: eligible[holders[n]], number: n})
	}

	return winners, nil
}

func validateSelection(winnersAmount, eligibleCount int) error {
	if winnersAmount < 1 {
		return errorx.New(errorx.InvalidSelectionParameters, "Winners amount must be at least 1")
	}

	if eligibleCount < 1 {
		return errorx.New(errorx.InvalidSelectionParameters, "There is no eligible participant")
	}

	if winnersAmount > eligibleCount {
		return errorx.New(errorx.InvalidSelectionParameters,
			"Winners amount %d exceeds the number of eligible participants %d", winnersAmount, eligibleCount)
	}

	return nil
}

func (d *winnerDomain) countRun(drawing *entity.Drawing, result string) {
	common.IncCounter(common.WinnerSelectionTotal, string(drawing.SelectionMode), result)
}

func (d *winnerDomain) GetWinners(
	ctx context.Context, req *model.GetWinnersRequest,
) (*model.GetWinnersResponse, error) {
	if req.DrawingID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require drawing id")
	}

	// The selection may have been committed by another process, whose cache
	// invalidation does not reach this one.
	drawing, err := d.drawingRepo.GetByID(ctx, req.DrawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	if !drawing.WinnersSelectedAt.Valid {
		return nil, errorx.New(errorx.NotFound, "Winners of this drawing are not selected yet")
	}

	records, err := d.winnerRepo.GetByDrawingID(ctx, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winner records: %v", err)
		return nil, errorx.Unknown
	}

	ids := []string{}
	for _, r := range records {
		ids = append(ids, r.ParticipantID)
	}

	names := map[string]string{}
	if len(ids) > 0 {
		participants, err := d.participantRepo.GetByIDs(ctx, ids)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
			return nil, errorx.Unknown
		}

		for _, p := range participants {
			names[p.ID] = p.Name
		}
	}

	winners := []model.Winner{}
	for i := range records {
		winners = append(winners, model.ConvertWinner(&records[i], names[records[i].ParticipantID]))
	}

	return &model.GetWinnersResponse{
		SelectedAt: drawing.WinnersSelectedAt.Time.UTC().Format(model.DefaultTimeLayout),
		Seed:       strconv.FormatInt(drawing.SelectionSeed.Int64, 10),
		Winners:    winners,
	}, nil
}
