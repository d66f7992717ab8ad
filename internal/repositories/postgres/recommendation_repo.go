package postgres

import (
	"context"

	"github.com/teamup-campus/teamup/internal/models"
	"gorm.io/gorm"
)

type RecommendationRepository interface {
	Insert(ctx context.Context, rec *models.RecommendationLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.RecommendationLog, error)
}

type recommendationRepo struct {
	db *gorm.DB
}

func NewRecommendationRepo(db *gorm.DB) RecommendationRepository {
	return &recommendationRepo{db: db}
}

func (r *recommendationRepo) Insert(ctx context.Context, rec *models.RecommendationLog) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recommendationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.RecommendationLog, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.RecommendationLog
	err := q.Find(&out).Error
	return out, err
}
