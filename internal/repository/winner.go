package repository

import (
	"context"

	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type WinnerRepository interface {
	CreateBatch(ctx context.Context, winners []entity.WinnerRecord) error
	GetByDrawingID(ctx context.Context, drawingID string) ([]entity.WinnerRecord, error)
}

type winnerRepository struct{}

func NewWinnerRepository() *winnerRepository {
	return &winnerRepository{}
}

func (r *winnerRepository) CreateBatch(ctx context.Context, winners []entity.WinnerRecord) error {
	if len(winners) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Omit(clause.Associations).Create(&winners).Error
}

func (r *winnerRepository) GetByDrawingID(ctx context.Context, drawingID string) ([]entity.WinnerRecord, error) {
	var result []entity.WinnerRecord
	err := xcontext.DB(ctx).
		Where("drawing_id=?", drawingID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}}).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
