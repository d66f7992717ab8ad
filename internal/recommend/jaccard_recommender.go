package recommend

import "sort"

// Composite facet weights. They sum to 1.0 and are never renormalized: a
// facet missing on both sides contributes 0.
const (
	WeightSkills      = 0.4
	WeightInterests   = 0.3
	WeightAvailable   = 0.1
	WeightPersonality = 0.1
	WeightExperience  = 0.1
)

// JaccardResult is one ranked candidate of the Jaccard pipeline.
type JaccardResult struct {
	PostID string  `json:"post_id"`
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`

	SkillScore       float64 `json:"skill_score"`
	InterestScore    float64 `json:"interest_score"`
	AvailableScore   float64 `json:"available_score"`
	PersonalityScore float64 `json:"personality_score"`
	ExperienceScore  float64 `json:"experience_score"`

	CommonSkills    []string `json:"common_skills"`
	CommonInterests []string `json:"common_interests"`
}

func (s facetScores) composite() float64 {
	return WeightSkills*s.skills +
		WeightInterests*s.interests +
		WeightAvailable*s.available +
		WeightPersonality*s.personality +
		WeightExperience*s.experience
}

// RecommendByJaccard ranks candidates against the requester's post (or the
// filter overrides) by composite score, highest first, keeping at most k.
//
// The requester's own post and any other post by the requester are skipped.
// Candidates scoring 0 are dropped even when fewer than k remain. Equal
// scores keep their input order.
func RecommendByJaccard(requester Post, candidates []Post, k int, filters *Filters) []JaccardResult {
	if k <= 0 {
		k = DefaultTopK
	}

	q := resolveQuery(&requester, filters)
	results := make([]JaccardResult, 0, len(candidates))

	for i := range candidates {
		p := &candidates[i]
		if p.ID == requester.ID {
			continue
		}
		if requester.UserID != "" && p.UserID == requester.UserID {
			continue
		}

		c := postFacets(p)
		s := scoreFacets(q, c)
		score := s.composite()
		if score <= 0 {
			continue
		}

		results = append(results, JaccardResult{
			PostID:           p.ID,
			UserID:           p.UserID,
			Score:            score,
			SkillScore:       s.skills,
			InterestScore:    s.interests,
			AvailableScore:   s.available,
			PersonalityScore: s.personality,
			ExperienceScore:  s.experience,
			CommonSkills:     IntersectionSets(q.skills, c.skills),
			CommonInterests:  IntersectionSets(q.interests, c.interests),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
