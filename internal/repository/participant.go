package repository

import (
	"context"

	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *entity.Participant) error
	GetByID(ctx context.Context, id string) (*entity.Participant, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Participant, error)
	GetListByDrawingID(ctx context.Context, drawingID string, offset, limit int) ([]entity.Participant, error)
	GetEligible(ctx context.Context, drawingID string) ([]entity.Participant, error)
	UpdateEligibility(ctx context.Context, id string, eligible bool) error
	MarkWinners(ctx context.Context, drawingID string, ids []string) error
}

type participantRepository struct{}

func NewParticipantRepository() *participantRepository {
	return &participantRepository{}
}

func (r *participantRepository) Create(ctx context.Context, participant *entity.Participant) error {
	return xcontext.DB(ctx).Omit(clause.Associations).Create(participant).Error
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*entity.Participant, error) {
	var result entity.Participant
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participantRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Participant, error) {
	var result []entity.Participant
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *participantRepository) GetListByDrawingID(
	ctx context.Context, drawingID string, offset, limit int,
) ([]entity.Participant, error) {
	var result []entity.Participant
	err := xcontext.DB(ctx).
		Where("drawing_id=?", drawingID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetEligible returns the eligible participants in a stable order, so the
// same seed always produces the same selection.
func (r *participantRepository) GetEligible(ctx context.Context, drawingID string) ([]entity.Participant, error) {
	var result []entity.Participant
	err := xcontext.DB(ctx).
		Where("drawing_id=? AND eligible=?", drawingID, true).
		Order("created_at ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateEligibility changes the eligibility of a participant while the winners
// of its drawing are not selected. The drawing is checked in the same
// statement, so the write cannot land after a committed selection.
func (r *participantRepository) UpdateEligibility(ctx context.Context, id string, eligible bool) error {
	selected := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Select("1").
		Where("drawings.id=participants.drawing_id AND drawings.winners_selected_at IS NOT NULL")

	tx := xcontext.DB(ctx).Model(&entity.Participant{}).
		Where("id=? AND NOT EXISTS (?)", id, selected).
		Update("eligible", eligible)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *participantRepository) MarkWinners(ctx context.Context, drawingID string, ids []string) error {
	return xcontext.DB(ctx).Model(&entity.Participant{}).
		Where("drawing_id=? AND id IN (?)", drawingID, ids).
		Update("is_winner", true).Error
}
