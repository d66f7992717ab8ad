package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/teamup-campus/teamup/internal/cache"
	"github.com/teamup-campus/teamup/internal/metrics"
	"github.com/teamup-campus/teamup/internal/models"
	"github.com/teamup-campus/teamup/internal/recommend"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
	"gorm.io/datatypes"
)

const (
	feedCachePrefix  = "feed:"
	defaultFeedLimit = 20
	maxFeedLimit     = 100
	// rows scanned when filtering by tag, since tags live in free-form jsonb
	feedScanLimit = 500
	maxTitleLen   = 200
)

// PostInput is used for both create and partial update; nil fields are left unchanged on update.
// Facet fields accept any JSON shape.
type PostInput struct {
	Title       *string        `json:"title,omitempty"`
	Content     *string        `json:"content,omitempty"`
	Skills      datatypes.JSON `json:"skills,omitempty"`
	Interests   datatypes.JSON `json:"interests,omitempty"`
	Available   datatypes.JSON `json:"available,omitempty"`
	Personality datatypes.JSON `json:"personality,omitempty"`
	Experience  datatypes.JSON `json:"experience,omitempty"`
	DesiredRole *string        `json:"desired_role,omitempty"`
	TeamSize    *int           `json:"team_size,omitempty"`
}

type FeedQuery struct {
	Skill      string
	Interest   string
	Department string
	Limit      int
}

func (q FeedQuery) cacheKey() string {
	return feedCachePrefix + strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Department)),
		strings.ToLower(strings.TrimSpace(q.Skill)),
		strings.ToLower(strings.TrimSpace(q.Interest)),
		strconv.Itoa(q.Limit),
	}, "|")
}

type PostService interface {
	Create(ctx context.Context, userID string, in PostInput) (*models.Post, error)
	Update(ctx context.Context, userID, postID string, in PostInput) (*models.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	Get(ctx context.Context, viewerID, postID string) (*models.Post, error)
	Feed(ctx context.Context, q FeedQuery) ([]models.Post, error)
	// Latest returns the post that represents userID in recommendations.
	Latest(ctx context.Context, userID string) (*models.Post, error)
}

type postService struct {
	posts    pgrepo.PostRepository
	cache    cache.Cache
	cacheTTL time.Duration
	tracker  InteractionTracker
	log      *logrus.Logger
}

func NewPostService(posts pgrepo.PostRepository, c cache.Cache, cacheTTL time.Duration, tracker InteractionTracker, log *logrus.Logger) PostService {
	if log == nil {
		log = logrus.New()
	}
	return &postService{posts: posts, cache: c, cacheTTL: cacheTTL, tracker: tracker, log: log}
}

func (s *postService) Create(ctx context.Context, userID string, in PostInput) (*models.Post, error) {
	const op = "PostService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}

	now := time.Now().UTC()
	p := &models.Post{ID: uuid.NewString(), UserID: userID, CreatedAt: now}
	if err := applyPostInput(p, in); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), err)
	}
	p.UpdatedAt = now

	if err := s.posts.Create(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create post", err)
	}
	s.invalidateFeed(ctx)
	return p, nil
}

func (s *postService) Update(ctx context.Context, userID, postID string, in PostInput) (*models.Post, error) {
	const op = "PostService.Update"

	p, err := s.owned(ctx, op, userID, postID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title cannot be empty", nil)
	}
	if err := applyPostInput(p, in); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), err)
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.posts.Update(ctx, p); err != nil {
		return nil, utils.FromStore(op, "post", "failed to update post", err)
	}
	s.invalidateFeed(ctx)
	return p, nil
}

func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	const op = "PostService.Delete"

	if _, err := s.owned(ctx, op, userID, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return utils.FromStore(op, "post", "failed to delete post", err)
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *postService) Get(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	const op = "PostService.Get"

	p, err := s.load(ctx, op, postID)
	if err != nil {
		return nil, err
	}
	if s.tracker != nil && viewerID != "" && viewerID != p.UserID {
		s.tracker.Track(ctx, viewerID, p.UserID, string(models.ActionView), map[string]any{"post_id": p.ID})
	}
	return p, nil
}

func (s *postService) Latest(ctx context.Context, userID string) (*models.Post, error) {
	const op = "PostService.Latest"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	p, err := s.posts.LatestByUser(ctx, userID)
	if err != nil {
		return nil, utils.FromStore(op, "post", "failed to load post", err)
	}
	return p, nil
}

func (s *postService) Feed(ctx context.Context, q FeedQuery) ([]models.Post, error) {
	const op = "PostService.Feed"

	if q.Limit <= 0 {
		q.Limit = defaultFeedLimit
	}
	if q.Limit > maxFeedLimit {
		q.Limit = maxFeedLimit
	}

	key := q.cacheKey()
	if s.cache != nil {
		var cached []models.Post
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).WithField("key", key).Warn("feed cache read failed")
		}
		if hit {
			metrics.FeedCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.FeedCacheLookups.WithLabelValues("miss").Inc()
	}

	skill := strings.TrimSpace(q.Skill)
	interest := strings.TrimSpace(q.Interest)
	filtered := skill != "" || interest != ""

	f := pgrepo.PostFilter{Department: strings.TrimSpace(q.Department), Limit: q.Limit}
	if filtered {
		f.Limit = feedScanLimit
	}
	rows, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list posts", err)
	}

	out := make([]models.Post, 0, len(rows))
	for _, p := range rows {
		if skill != "" && !recommend.ToTagSet(recommend.FromJSON(p.Skills)).HasFold(skill) {
			continue
		}
		if interest != "" && !recommend.ToTagSet(recommend.FromJSON(p.Interests)).HasFold(interest) {
			continue
		}
		out = append(out, p)
		if len(out) == q.Limit {
			break
		}
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, out, s.cacheTTL); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("feed cache write failed")
		}
	}
	return out, nil
}

func (s *postService) load(ctx context.Context, op, postID string) (*models.Post, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "post_id is required", nil)
	}
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, utils.FromStore(op, "post", "failed to get post", err)
	}
	return p, nil
}

func (s *postService) owned(ctx context.Context, op, userID, postID string) (*models.Post, error) {
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	p, err := s.load(ctx, op, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return p, nil
}

func (s *postService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelPrefix(ctx, feedCachePrefix); err != nil {
		s.log.WithError(err).Warn("feed cache invalidation failed")
	}
}

var (
	errTitleTooLong  = errors.New("title is too long")
	errTeamSize      = errors.New("team_size must be positive")
	errInvalidFacets = errors.New("facet fields must be valid json")
)

func applyPostInput(p *models.Post, in PostInput) error {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if utf8.RuneCountInString(t) > maxTitleLen {
			return errTitleTooLong
		}
		p.Title = t
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.DesiredRole != nil {
		p.DesiredRole = strings.TrimSpace(*in.DesiredRole)
	}
	if in.TeamSize != nil {
		if *in.TeamSize <= 0 {
			return errTeamSize
		}
		n := *in.TeamSize
		p.TeamSize = &n
	}

	for _, f := range []struct {
		in  datatypes.JSON
		dst *datatypes.JSON
	}{
		{in.Skills, &p.Skills},
		{in.Interests, &p.Interests},
		{in.Available, &p.Available},
		{in.Personality, &p.Personality},
		{in.Experience, &p.Experience},
	} {
		if f.in == nil {
			continue
		}
		if !validJSON(f.in) {
			return errInvalidFacets
		}
		*f.dst = f.in
	}
	return nil
}

func validJSON(raw []byte) bool {
	return json.Valid(raw)
}
