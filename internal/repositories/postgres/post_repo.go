package postgres

import (
	"context"
	"errors"

	"github.com/teamup-campus/teamup/internal/models"
	"github.com/teamup-campus/teamup/internal/utils"
	"gorm.io/gorm"
)

// PostFilter narrows the feed. Department is matched against the author's profile.
type PostFilter struct {
	Department string
	Limit      int
	Offset     int
}

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, postID string) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, f PostFilter) ([]models.Post, error)
	// LatestPerUser returns each user's most recent post.
	LatestPerUser(ctx context.Context) ([]models.Post, error)
	LatestByUser(ctx context.Context, userID string) (*models.Post, error)
}

type postRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, p *models.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *postRepo) Update(ctx context.Context, p *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":        p.Title,
			"content":      p.Content,
			"skills":       p.Skills,
			"interests":    p.Interests,
			"available":    p.Available,
			"personality":  p.Personality,
			"experience":   p.Experience,
			"desired_role": p.DesiredRole,
			"team_size":    p.TeamSize,
			"updated_at":   p.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, postID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", postID).
		Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var p models.Post
	err := r.db.WithContext(ctx).
		Where("id = ?", postID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *postRepo) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Order("posts.created_at DESC")
	if f.Department != "" {
		q = q.Joins("JOIN profiles ON profiles.id = posts.user_id").
			Where("profiles.department = ?", f.Department)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Post
	err := q.Select("posts.*").Find(&out).Error
	return out, err
}

// LatestPerUser returns each user's most recent post, newest first.
func (r *postRepo) LatestPerUser(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := r.db.WithContext(ctx).
		Raw(`SELECT * FROM (SELECT DISTINCT ON (user_id) * FROM posts ORDER BY user_id, created_at DESC) latest ORDER BY created_at DESC, id`).
		Scan(&out).Error
	return out, err
}

func (r *postRepo) LatestByUser(ctx context.Context, userID string) (*models.Post, error) {
	var p models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}
