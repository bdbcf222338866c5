package repository

import (
	"context"
	"time"

	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DrawingRepository interface {
	Create(ctx context.Context, drawing *entity.Drawing) error
	GetByID(ctx context.Context, id string) (*entity.Drawing, error)
	GetOpen(ctx context.Context, now time.Time) ([]entity.Drawing, error)
	GetEndedWithoutWinners(ctx context.Context, now time.Time, onlyAutoSelect bool) ([]entity.Drawing, error)
	UpdateIfUnclaimed(ctx context.Context, drawing *entity.Drawing, now time.Time) error
	MarkWinnersSelected(ctx context.Context, id string, at time.Time, seed int64) error
}

type drawingRepository struct{}

func NewDrawingRepository() *drawingRepository {
	return &drawingRepository{}
}

func (r *drawingRepository) Create(ctx context.Context, drawing *entity.Drawing) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(drawing).Error
}

func (r *drawingRepository) GetByID(ctx context.Context, id string) (*entity.Drawing, error) {
	var result entity.Drawing
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *drawingRepository) GetOpen(ctx context.Context, now time.Time) ([]entity.Drawing, error) {
	var result []entity.Drawing
	if err := xcontext.DB(ctx).Find(&result, "end_at>?", now).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *drawingRepository) GetEndedWithoutWinners(
	ctx context.Context, now time.Time, onlyAutoSelect bool,
) ([]entity.Drawing, error) {
	tx := xcontext.DB(ctx).Where("end_at<=? AND winners_selected_at IS NULL", now)
	if onlyAutoSelect {
		tx = tx.Where("auto_select=?", true)
	}

	var result []entity.Drawing
	if err := tx.Order("end_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateIfUnclaimed applies an administrative edit. The edit only succeeds
// while no slot of the drawing is taken or held by a live reservation, which
// is checked in the same statement as the write.
func (r *drawingRepository) UpdateIfUnclaimed(ctx context.Context, drawing *entity.Drawing, now time.Time) error {
	claimed := xcontext.DB(ctx).Model(&entity.Slot{}).
		Select("1").
		Where("drawing_id=? AND (status=? OR (status=? AND expires_at>?))",
			drawing.ID, entity.SlotTaken, entity.SlotReserved, now)

	tx := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=? AND winners_selected_at IS NULL AND NOT EXISTS (?)", drawing.ID, claimed).
		Updates(map[string]any{
			"title":          drawing.Title,
			"end_at":         drawing.EndAt,
			"selection_mode": drawing.SelectionMode,
			"winners_amount": drawing.WinnersAmount,
			"random_number":  drawing.RandomNumber,
			"auto_select":    drawing.AutoSelect,
			"rules":          drawing.Rules,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkWinnersSelected moves the drawing into the winners-selected state. Only
// one caller can succeed for a drawing.
func (r *drawingRepository) MarkWinnersSelected(ctx context.Context, id string, at time.Time, seed int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=? AND winners_selected_at IS NULL", id).
		Updates(map[string]any{
			"winners_selected_at": at,
			"selection_seed":      seed,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
