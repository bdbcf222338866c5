package repository

import (
	"context"
	"time"

	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const slotBatchSize = 500

type SlotStatistic struct {
	Total    int64
	Taken    int64
	Reserved int64
}

type SlotRepository interface {
	CreateBatch(ctx context.Context, slots []entity.Slot) error
	Get(ctx context.Context, drawingID string, number int) (*entity.Slot, error)
	GetByNumbers(ctx context.Context, drawingID string, numbers []int) ([]entity.Slot, error)
	GetPage(ctx context.Context, drawingID string, offset, limit int) ([]entity.Slot, error)
	GetTaken(ctx context.Context, drawingID string) ([]entity.Slot, error)
	GetAvailableNumbers(ctx context.Context, drawingID string, now time.Time) ([]int, error)
	CountLiveHolds(ctx context.Context, drawingID, holder string, now time.Time) (int64, error)
	Statistic(ctx context.Context, drawingID string, now time.Time) (*SlotStatistic, error)

	// Conditional writes. Each one is a single UPDATE guarded by the state the
	// slot must be in; gorm.ErrRecordNotFound means the guard did not hold.
	SetReservedIfAvailable(ctx context.Context, drawingID string, number int, holder string, now, expiresAt time.Time) error
	SetTaken(ctx context.Context, drawingID string, number int, holder, participantID string, now time.Time) error
	ClearIfExpiredOrHolder(ctx context.Context, drawingID string, number int, holder string, now time.Time) error
	ReleaseReserved(ctx context.Context, drawingID string, numbers []int) (int64, error)
	SweepExpired(ctx context.Context, drawingID string, now time.Time) (int64, error)
}

type slotRepository struct{}

func NewSlotRepository() *slotRepository {
	return &slotRepository{}
}

func (r *slotRepository) CreateBatch(ctx context.Context, slots []entity.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Omit(clause.Associations).CreateInBatches(slots, slotBatchSize).Error
}

func (r *slotRepository) Get(ctx context.Context, drawingID string, number int) (*entity.Slot, error) {
	var result entity.Slot
	err := xcontext.DB(ctx).Take(&result, "drawing_id=? AND number=?", drawingID, number).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *slotRepository) GetByNumbers(ctx context.Context, drawingID string, numbers []int) ([]entity.Slot, error) {
	var result []entity.Slot
	err := xcontext.DB(ctx).
		Where("drawing_id=? AND number IN (?)", drawingID, numbers).
		Order("number ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *slotRepository) GetPage(ctx context.Context, drawingID string, offset, limit int) ([]entity.Slot, error) {
	var result []entity.Slot
	err := xcontext.DB(ctx).
		Where("drawing_id=?", drawingID).
		Order("number ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *slotRepository) GetTaken(ctx context.Context, drawingID string) ([]entity.Slot, error) {
	var result []entity.Slot
	err := xcontext.DB(ctx).
		Where("drawing_id=? AND status=?", drawingID, entity.SlotTaken).
		Order("number ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *slotRepository) GetAvailableNumbers(ctx context.Context, drawingID string, now time.Time) ([]int, error) {
	var result []int
	err := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND (status=? OR (status=? AND expires_at<=?))",
			drawingID, entity.SlotAvailable, entity.SlotReserved, now).
		Order("number ASC").
		Pluck("number", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *slotRepository) CountLiveHolds(ctx context.Context, drawingID, holder string, now time.Time) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND status=? AND holder=? AND expires_at>?",
			drawingID, entity.SlotReserved, holder, now).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// Statistic counts the slots of a drawing in one statement so that the three
// counters come from the same snapshot. Expired reservations are not counted
// as reserved.
func (r *slotRepository) Statistic(ctx context.Context, drawingID string, now time.Time) (*SlotStatistic, error) {
	var result SlotStatistic
	err := xcontext.DB(ctx).Model(&entity.Slot{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status=? THEN 1 ELSE 0 END), 0) AS taken, "+
			"COALESCE(SUM(CASE WHEN status=? AND expires_at>? THEN 1 ELSE 0 END), 0) AS reserved",
			entity.SlotTaken, entity.SlotReserved, now).
		Where("drawing_id=?", drawingID).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *slotRepository) SetReservedIfAvailable(
	ctx context.Context, drawingID string, number int, holder string, now, expiresAt time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND number=?", drawingID, number).
		Where("(status=? OR (status=? AND (expires_at<=? OR holder=?)))",
			entity.SlotAvailable, entity.SlotReserved, now, holder).
		Updates(map[string]any{
			"status":     entity.SlotReserved,
			"holder":     holder,
			"expires_at": expiresAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *slotRepository) SetTaken(
	ctx context.Context, drawingID string, number int, holder, participantID string, now time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND number=? AND status=? AND holder=? AND expires_at>?",
			drawingID, number, entity.SlotReserved, holder, now).
		Updates(map[string]any{
			"status":         entity.SlotTaken,
			"participant_id": participantID,
			"holder":         gorm.Expr("NULL"),
			"expires_at":     gorm.Expr("NULL"),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *slotRepository) ClearIfExpiredOrHolder(
	ctx context.Context, drawingID string, number int, holder string, now time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND number=? AND status=?", drawingID, number, entity.SlotReserved).
		Where("(expires_at<=? OR holder=?)", now, holder).
		Updates(clearedSlot())
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *slotRepository) ReleaseReserved(ctx context.Context, drawingID string, numbers []int) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND number IN (?) AND status=?", drawingID, numbers, entity.SlotReserved).
		Updates(clearedSlot())
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (r *slotRepository) SweepExpired(ctx context.Context, drawingID string, now time.Time) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.Slot{}).
		Where("drawing_id=? AND status=? AND expires_at<=?", drawingID, entity.SlotReserved, now).
		Updates(clearedSlot())
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func clearedSlot() map[string]any {
	return map[string]any{
		"status":     entity.SlotAvailable,
		"holder":     gorm.Expr("NULL"),
		"expires_at": gorm.Expr("NULL"),
	}
}
