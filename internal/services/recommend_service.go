package services

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/teamup-campus/teamup/internal/metrics"
	"github.com/teamup-campus/teamup/internal/models"
	"github.com/teamup-campus/teamup/internal/recommend"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	maxRecommendK       = 100
	defaultHistoryLimit = 20
)

type RecommendRequest struct {
	K          int                `json:"k"`
	Filters    *recommend.Filters `json:"filters,omitempty"`
	IncludeANN *bool              `json:"include_ann,omitempty"`
}

type RecommendResponse struct {
	UserID            string                    `json:"user_id"`
	Count             int                       `json:"count"`
	RecommendedSkills []string                  `json:"recommended_skills"`
	Jaccard           []recommend.JaccardResult `json:"jaccard"`
	ANN               []recommend.ANNResult     `json:"ann"`
}

func emptyRecommendation(userID string) *RecommendResponse {
	return &RecommendResponse{
		UserID:            userID,
		RecommendedSkills: []string{},
		Jaccard:           []recommend.JaccardResult{},
		ANN:               []recommend.ANNResult{},
	}
}

type RecommendService interface {
	Recommend(ctx context.Context, userID string, req RecommendRequest) (*RecommendResponse, error)
	History(ctx context.Context, userID string, limit int) ([]models.RecommendationLog, error)
}

type recommendService struct {
	posts        pgrepo.PostRepository
	profiles     pgrepo.ProfileRepository
	interactions pgrepo.InteractionRepository
	audits       pgrepo.RecommendationRepository
	weights      *recommend.Weights
	log          *logrus.Logger
}

// NewRecommendService wires both scoring pipelines to storage. A nil weights
// bundle disables the network pipeline.
func NewRecommendService(
	posts pgrepo.PostRepository,
	profiles pgrepo.ProfileRepository,
	interactions pgrepo.InteractionRepository,
	audits pgrepo.RecommendationRepository,
	weights *recommend.Weights,
	log *logrus.Logger,
) RecommendService {
	if log == nil {
		log = logrus.New()
	}
	return &recommendService{
		posts:        posts,
		profiles:     profiles,
		interactions: interactions,
		audits:       audits,
		weights:      weights,
		log:          log,
	}
}

func (s *recommendService) Recommend(ctx context.Context, userID string, req RecommendRequest) (*RecommendResponse, error) {
	const op = "RecommendService.Recommend"

	resp, err := s.recommend(ctx, op, userID, req)
	switch {
	case err != nil:
		metrics.RecommendRequests.WithLabelValues("error").Inc()
	case resp.Count == 0 && len(resp.ANN) == 0:
		metrics.RecommendRequests.WithLabelValues("empty").Inc()
	default:
		metrics.RecommendRequests.WithLabelValues("ok").Inc()
	}
	return resp, err
}

func (s *recommendService) recommend(ctx context.Context, op, userID string, req RecommendRequest) (*RecommendResponse, error) {
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if req.K < 0 || req.K > maxRecommendK {
		return nil, utils.E(utils.CodeInvalidArgument, op, "k must be between 0 and 100", nil)
	}
	if f := req.Filters; f != nil {
		if outOfYearRange(f.PreferredYearMin) || outOfYearRange(f.PreferredYearMax) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "preferred year must be between 1 and 8", nil)
		}
	}

	latest, err := s.posts.LatestPerUser(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load posts", err)
	}

	var mine *models.Post
	userIDs := make([]string, 0, len(latest))
	for i := range latest {
		userIDs = append(userIDs, latest[i].UserID)
		if latest[i].UserID == userID {
			mine = &latest[i]
		}
	}
	if mine == nil {
		return emptyRecommendation(userID), nil
	}

	profiles, err := s.profiles.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load profiles", err)
	}
	byID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	requester := toCandidate(*mine, byID)
	pool := make([]recommend.Candidate, 0, len(latest))
	posts := make([]recommend.Post, 0, len(latest))
	for _, p := range latest {
		if p.UserID == userID {
			continue
		}
		c := toCandidate(p, byID)
		pool = append(pool, c)
		posts = append(posts, *c.Post)
	}
	metrics.RecommendCandidates.Observe(float64(len(pool)))

	runANN := s.weights != nil && (req.IncludeANN == nil || *req.IncludeANN)

	var (
		jaccard []recommend.JaccardResult
		ann     = []recommend.ANNResult{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		jaccard = recommend.RecommendByJaccard(*requester.Post, posts, req.K, req.Filters)
		metrics.RecommendPipelineDuration.WithLabelValues("jaccard").Observe(time.Since(start).Seconds())
		return nil
	})
	if runANN {
		g.Go(func() error {
			rows, err := s.interactions.ListByActor(gctx, userID)
			if err != nil {
				return utils.E(utils.CodeInternal, op, "failed to load interactions", err)
			}
			start := time.Now()
			out, err := recommend.RecommendByANN(requester, pool, recommend.AggregateInteractions(userID, toScorerInteractions(rows)), s.weights, req.K, req.Filters)
			metrics.RecommendPipelineDuration.WithLabelValues("ann").Observe(time.Since(start).Seconds())
			if err != nil {
				if errors.Is(err, recommend.ErrDimensionMismatch) || errors.Is(err, recommend.ErrNoWeights) {
					return utils.E(utils.CodeInternal, op, "model configuration error", err)
				}
				return utils.E(utils.CodeInternal, op, "ann scoring failed", err)
			}
			ann = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &RecommendResponse{
		UserID:            userID,
		Count:             len(jaccard),
		RecommendedSkills: commonSkills(jaccard),
		Jaccard:           jaccard,
		ANN:               ann,
	}
	s.audit(ctx, resp, req.Filters)
	return resp, nil
}

func (s *recommendService) History(ctx context.Context, userID string, limit int) ([]models.RecommendationLog, error) {
	const op = "RecommendService.History"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if limit <= 0 || limit > maxRecommendK {
		limit = defaultHistoryLimit
	}
	out, err := s.audits.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recommendations", err)
	}
	return out, nil
}

// audit failures never fail the request
func (s *recommendService) audit(ctx context.Context, resp *RecommendResponse, f *recommend.Filters) {
	log := s.log.WithField("user_id", resp.UserID)

	rec := &models.RecommendationLog{
		ID:                uuid.NewString(),
		UserID:            resp.UserID,
		RecommendedSkills: pq.StringArray(resp.RecommendedSkills),
		CreatedAt:         time.Now().UTC(),
	}
	var err error
	if rec.RecommendedProfiles, err = toJSON(resp.Jaccard); err != nil {
		log.WithError(err).Warn("failed to encode recommendation audit")
		return
	}
	if rec.ANNProfiles, err = toJSON(resp.ANN); err != nil {
		log.WithError(err).Warn("failed to encode recommendation audit")
		return
	}
	if f != nil {
		if rec.Filters, err = toJSON(f); err != nil {
			log.WithError(err).Warn("failed to encode recommendation audit")
			return
		}
	}

	if err := s.audits.Insert(ctx, rec); err != nil {
		log.WithError(err).Warn("failed to write recommendation audit")
	}
}

func toJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func outOfYearRange(y *int) bool {
	return y != nil && (*y < MinYear || *y > MaxYear)
}

// commonSkills is the deduplicated union of shared skills, in rank order.
func commonSkills(results []recommend.JaccardResult) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range results {
		for _, sk := range r.CommonSkills {
			if _, ok := seen[sk]; ok {
				continue
			}
			seen[sk] = struct{}{}
			out = append(out, sk)
		}
	}
	return out
}

func toScorerPost(p models.Post) recommend.Post {
	return recommend.Post{
		ID:          p.ID,
		UserID:      p.UserID,
		Skills:      recommend.FromJSON(p.Skills),
		Interests:   recommend.FromJSON(p.Interests),
		Available:   recommend.FromJSON(p.Available),
		Personality: recommend.FromJSON(p.Personality),
		Experience:  recommend.FromJSON(p.Experience),
	}
}

func toCandidate(p models.Post, profiles map[string]models.Profile) recommend.Candidate {
	sp := toScorerPost(p)
	c := recommend.Candidate{UserID: p.UserID, Post: &sp}
	if prof, ok := profiles[p.UserID]; ok {
		c.Profile = recommend.Demographics{Department: prof.Department, Year: prof.Year}
	}
	return c
}

func toScorerInteractions(rows []models.Interaction) []recommend.Interaction {
	out := make([]recommend.Interaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, recommend.Interaction{FromUserID: r.FromUserID, ToUserID: r.ToUserID, Action: r.Action})
	}
	return out
}
