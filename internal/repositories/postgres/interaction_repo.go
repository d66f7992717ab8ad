package postgres

import (
	"context"

	"github.com/teamup-campus/teamup/internal/models"
	"gorm.io/gorm"
)

type InteractionRepository interface {
	Insert(ctx context.Context, in *models.Interaction) error
	ListByActor(ctx context.Context, fromUserID string) ([]models.Interaction, error)
}

type interactionRepo struct {
	db *gorm.DB
}

func NewInteractionRepo(db *gorm.DB) InteractionRepository {
	return &interactionRepo{db: db}
}

func (r *interactionRepo) Insert(ctx context.Context, in *models.Interaction) error {
	return r.db.WithContext(ctx).Create(in).Error
}

func (r *interactionRepo) ListByActor(ctx context.Context, fromUserID string) ([]models.Interaction, error) {
	var out []models.Interaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ?", fromUserID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
