package domain

import (
	"context"
	"errors"
	"time"

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

type ReservationDomain interface {
	Reserve(context.Context, *model.ReserveSlotRequest) (*model.ReserveSlotResponse, error)
	ReserveRandom(context.Context, *model.ReserveRandomSlotsRequest) (*model.ReserveRandomSlotsResponse, error)
	Confirm(context.Context, *model.ConfirmSlotsRequest) (*model.ConfirmSlotsResponse, error)
	Release(context.Context, *model.ReleaseSlotsRequest) (*model.ReleaseSlotsResponse, error)
	GetSlot(context.Context, *model.GetSlotRequest) (*model.GetSlotResponse, error)
	SweepExpired(ctx context.Context, drawingID string) (int64, error)
}

type reservationDomain struct {
	slotRepo        repository.SlotRepository
	participantRepo repository.ParticipantRepository
	drawingCache    drawingcache.Cache
	publisher       pubsub.Publisher
	clock           clockwork.Clock
}

func NewReservationDomain(
	slotRepo repository.SlotRepository,
	participantRepo repository.ParticipantRepository,
	drawingCache drawingcache.Cache,
	publisher pubsub.Publisher,
	clock clockwork.Clock,
) *reservationDomain {
	return &reservationDomain{
		slotRepo:        slotRepo,
		participantRepo: participantRepo,
		drawingCache:    drawingCache,
		publisher:       publisher,
		clock:           clock,
	}
}

func (d *reservationDomain) now() time.Time {
	return d.clock.Now().UTC()
}

func (d *reservationDomain) Reserve(
	ctx context.Context, req *model.ReserveSlotRequest,
) (*model.ReserveSlotResponse, error) {
	if req.Holder == "" {
		return nil, errorx.New(errorx.BadRequest, "Require holder")
	}

	ttl, err := reservationTTL(ctx, req.TTLMinutes)
	if err != nil {
		return nil, err
	}

	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	now := d.now()
	if drawing.HasEnded(now) {
		common.IncCounter(common.SlotReservationTotal, "ended")
		return nil, errorx.New(errorx.DrawingEnded, "Drawing has ended")
	}

	if drawing.RandomNumber {
		return nil, errorx.New(errorx.BadRequest, "This drawing only assigns random numbers")
	}

	if err := checkNumber(drawing, req.Number); err != nil {
		return nil, err
	}

	d.sweep(ctx, drawing.ID, now)

	if err := d.checkHoldLimit(ctx, drawing, req.Holder, 1, req.Number, now); err != nil {
		return nil, err
	}

	expiresAt := now.Add(ttl)
	err = d.slotRepo.SetReservedIfAvailable(ctx, drawing.ID, req.Number, req.Holder, now, expiresAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.IncCounter(common.SlotReservationTotal, "unavailable")
			return nil, errorx.New(errorx.SlotUnavailable, "Slot %d is not available", req.Number)
		}

		xcontext.Logger(ctx).Errorf("Cannot reserve slot: %v", err)
		return nil, errorx.Unknown
	}

	common.IncCounter(common.SlotReservationTotal, "reserved")
	common.Publish(ctx, d.publisher, common.TopicSlotReserved, drawing.ID, common.SlotReservedEvent{
		DrawingID: drawing.ID,
		Numbers:   []int{req.Number},
		Holder:    req.Holder,
		ExpiresAt: expiresAt,
	})

	return &model.ReserveSlotResponse{
		Number:    req.Number,
		ExpiresAt: expiresAt.Format(model.DefaultTimeLayout),
	}, nil
}

func (d *reservationDomain) ReserveRandom(
	ctx context.Context, req *model.ReserveRandomSlotsRequest,
) (*model.ReserveRandomSlotsResponse, error) {
	if req.Holder == "" {
		return nil, errorx.New(errorx.BadRequest, "Require holder")
	}

	if req.Count < 1 {
		return nil, errorx.New(errorx.BadRequest, "Count must be a positive number")
	}

	ttl, err := reservationTTL(ctx, req.TTLMinutes)
	if err != nil {
		return nil, err
	}

	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	now := d.now()
	if drawing.HasEnded(now) {
		common.IncCounter(common.SlotReservationTotal, "ended")
		return nil, errorx.New(errorx.DrawingEnded, "Drawing has ended")
	}

	if req.Count > drawing.TotalSlots {
		return nil, errorx.New(errorx.BadRequest, "Count must not exceed %d", drawing.TotalSlots)
	}

	d.sweep(ctx, drawing.ID, now)

	if err := d.checkHoldLimit(ctx, drawing, req.Holder, req.Count, 0, now); err != nil {
		return nil, err
	}

	seed, err := selection.NewSeed()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate seed: %v", err)
		return nil, errorx.Unknown
	}
	r := selection.NewRand(seed)

	expiresAt := now.Add(ttl)
	reserved := []int{}
	maxAttempts := xcontext.Configs(ctx).Reservation.MaxRandomAttempts
	for attempt := 0; attempt < maxAttempts && len(reserved) < req.Count; attempt++ {
		available, err := d.slotRepo.GetAvailableNumbers(ctx, drawing.ID, now)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get available numbers: %v", err)
			d.rollbackRandom(ctx, drawing.ID, reserved)
			return nil, errorx.Unknown
		}

		if len(available) < req.Count-len(reserved) {
			break
		}

		selection.Shuffle(r, available)
		for _, number := range available {
			if len(reserved) == req.Count {
				break
			}

			err := d.slotRepo.SetReservedIfAvailable(ctx, drawing.ID, number, req.Holder, now, expiresAt)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Lost the race for this number, try the next one.
					continue
				}

				xcontext.Logger(ctx).Errorf("Cannot reserve slot: %v", err)
				d.rollbackRandom(ctx, drawing.ID, reserved)
				return nil, errorx.Unknown
			}

			reserved = append(reserved, number)
		}
	}

	if len(reserved) < req.Count {
		d.rollbackRandom(ctx, drawing.ID, reserved)
		common.IncCounter(common.SlotReservationTotal, "unavailable")
		return nil, errorx.New(errorx.SlotUnavailable, "Not enough available slots for %d numbers", req.Count)
	}

	common.AddCounter(common.SlotReservationTotal, float64(len(reserved)), "reserved")
	common.Publish(ctx, d.publisher, common.TopicSlotReserved, drawing.ID, common.SlotReservedEvent{
		DrawingID: drawing.ID,
		Numbers:   reserved,
		Holder:    req.Holder,
		ExpiresAt: expiresAt,
	})

	return &model.ReserveRandomSlotsResponse{
		Numbers:   reserved,
		ExpiresAt: expiresAt.Format(model.DefaultTimeLayout),
	}, nil
}

// rollbackRandom gives back the numbers a failed random assignment managed to
// reserve.
func (d *reservationDomain) rollbackRandom(ctx context.Context, drawingID string, numbers []int) {
	if len(numbers) == 0 {
		return
	}

	if _, err := d.slotRepo.ReleaseReserved(ctx, drawingID, numbers); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release random numbers of drawing %s: %v", drawingID, err)
	}
}

// checkHoldLimit applies the max_holds_per_holder rule to a request for
// requested more holds. number is the slot of a direct reservation, or zero for
// a random assignment.
func (d *reservationDomain) checkHoldLimit(
	ctx context.Context, drawing *entity.Drawing, holder string, requested, number int, now time.Time,
) error {
	rules, err := decodeRules(ctx, drawing)
	if err != nil {
		return err
	}

	if rules.MaxHoldsPerHolder <= 0 {
		return nil
	}

	holds, err := d.slotRepo.CountLiveHolds(ctx, drawing.ID, holder, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count live holds: %v", err)
		return errorx.Unknown
	}

	if holds+int64(requested) <= int64(rules.MaxHoldsPerHolder) {
		return nil
	}

	// Re-reserving a held slot only extends it.
	if number > 0 {
		slot, err := d.slotRepo.Get(ctx, drawing.ID, number)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get slot: %v", err)
			return errorx.Unknown
		}

		if slot.EffectiveStatus(now) == entity.SlotReserved && slot.Holder.String == holder {
			return nil
		}
	}

	common.IncCounter(common.SlotReservationTotal, "limited")
	return errorx.New(errorx.SlotUnavailable,
		"Holder can keep at most %d reservations at a time", rules.MaxHoldsPerHolder)
}

func (d *reservationDomain) Confirm(
	ctx context.Context, req *model.ConfirmSlotsRequest,
) (*model.ConfirmSlotsResponse, error) {
	if req.Holder == "" {
		return nil, errorx.New(errorx.BadRequest, "Require holder")
	}

	if req.ParticipantID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require participant id")
	}

	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	if err := checkNumbers(drawing, req.Numbers, xcontext.Configs(ctx).Reservation.MaxPageSize); err != nil {
		return nil, err
	}

	now := d.now()
	if drawing.HasEnded(now) {
		common.IncCounter(common.SlotConfirmationTotal, "ended")
		return nil, errorx.New(errorx.DrawingEnded, "Drawing has ended")
	}

	participant, err := d.participantRepo.GetByID(ctx, req.ParticipantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found participant")
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	if participant.DrawingID != drawing.ID {
		return nil, errorx.New(errorx.NotFound, "Not found participant")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	for _, number := range req.Numbers {
		err := d.slotRepo.SetTaken(ctx, drawing.ID, number, req.Holder, participant.ID, now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				common.IncCounter(common.SlotConfirmationTotal, "mismatched")
				return nil, errorx.New(errorx.ReservationExpiredOrMismatched,
					"Reservation of slot %d is expired or owned by another holder", number)
			}

			xcontext.Logger(ctx).Errorf("Cannot confirm slot: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit confirmation: %v", err)
		return nil, errorx.Unknown
	}

	slots := []model.Slot{}
	for _, number := range req.Numbers {
		slots = append(slots, model.Slot{
			Number:        number,
			Status:        string(entity.SlotTaken),
			ParticipantID: participant.ID,
		})
	}

	common.AddCounter(common.SlotConfirmationTotal, float64(len(req.Numbers)), "confirmed")
	common.Publish(ctx, d.publisher, common.TopicSlotConfirmed, drawing.ID, common.SlotConfirmedEvent{
		DrawingID:     drawing.ID,
		Numbers:       req.Numbers,
		ParticipantID: participant.ID,
	})

	return &model.ConfirmSlotsResponse{Slots: slots}, nil
}

func (d *reservationDomain) Release(
	ctx context.Context, req *model.ReleaseSlotsRequest,
) (*model.ReleaseSlotsResponse, error) {
	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	if err := checkNumbers(drawing, req.Numbers, xcontext.Configs(ctx).Reservation.MaxPageSize); err != nil {
		return nil, err
	}

	var count int64
	if req.Holder == "" {
		count, err = d.slotRepo.ReleaseReserved(ctx, drawing.ID, req.Numbers)
	} else {
		count, err = d.releaseHeldBy(ctx, drawing.ID, req.Numbers, req.Holder)
	}
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release slots: %v", err)
		return nil, errorx.Unknown
	}

	if count > 0 {
		common.Publish(ctx, d.publisher, common.TopicSlotReleased, drawing.ID, common.SlotReleasedEvent{
			DrawingID:     drawing.ID,
			Numbers:       req.Numbers,
			ReleasedCount: count,
		})
	}

	return &model.ReleaseSlotsResponse{ReleasedCount: count}, nil
}

// releaseHeldBy clears the numbers which are held by holder or whose hold has
// expired. Slots held live by someone else and taken slots are skipped.
func (d *reservationDomain) releaseHeldBy(
	ctx context.Context, drawingID string, numbers []int, holder string,
) (int64, error) {
	now := d.now()

	var count int64
	for _, n := range numbers {
		err := d.slotRepo.ClearIfExpiredOrHolder(ctx, drawingID, n, holder, now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}

			return count, err
		}

		count++
	}

	return count, nil
}

func (d *reservationDomain) GetSlot(
	ctx context.Context, req *model.GetSlotRequest,
) (*model.GetSlotResponse, error) {
	drawing, err := getDrawing(ctx, d.drawingCache, req.DrawingID)
	if err != nil {
		return nil, err
	}

	if err := checkNumber(drawing, req.Number); err != nil {
		return nil, err
	}

	slot, err := d.slotRepo.Get(ctx, drawing.ID, req.Number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found slot")
		}

		xcontext.Logger(ctx).Errorf("Cannot get slot: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetSlotResponse{Slot: model.ConvertSlot(slot, d.now())}, nil
}

func (d *reservationDomain) SweepExpired(ctx context.Context, drawingID string) (int64, error) {
	count, err := d.slotRepo.SweepExpired(ctx, drawingID, d.now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		common.AddCounter(common.SlotSweptTotal, float64(count), "cron")
	}

	return count, nil
}

// sweep clears the expired reservations of a drawing before a reservation.
// Reads never trust an expired hold, so a failed sweep only costs accuracy of
// the physical rows and is not reported to the caller.
func (d *reservationDomain) sweep(ctx context.Context, drawingID string, now time.Time) {
	count, err := d.slotRepo.SweepExpired(ctx, drawingID, now)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot sweep expired reservations of drawing %s: %v", drawingID, err)
		return
	}

	if count > 0 {
		common.AddCounter(common.SlotSweptTotal, float64(count), "lazy")
	}
}
