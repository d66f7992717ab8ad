package recommend

import "math"

// Recognized interaction actions. Anything else is ignored.
const (
	ActionView     = "view"
	ActionChat     = "chat"
	ActionTeamJoin = "team_join"
)

// FeatureCount is the dimensionality of every feature vector.
const FeatureCount = 9

// FeatureNames labels each position of a feature vector.
var FeatureNames = []string{
	"jaccard_skills",
	"jaccard_interests",
	"jaccard_available",
	"jaccard_personality",
	"jaccard_experience",
	"same_department",
	"year_similarity",
	"interaction_score",
	"has_past_interaction",
}

const (
	maxYearDistance  = 4
	neutralYearSim   = 0.5
	yearRangePenalty = 0.6
	interactionScale = 10.0
	viewWeight       = 0.1
	chatWeight       = 0.4
	teamJoinWeight   = 0.7
)

// Interaction is one directed log entry as the scorer sees it.
type Interaction struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Action     string `json:"action"`
}

// InteractionStats counts the recognized actions from the requester toward one target.
type InteractionStats struct {
	Views int `json:"views"`
	Chats int `json:"chats"`
	Teams int `json:"teams"`
}

func (s InteractionStats) raw() float64 {
	return viewWeight*float64(s.Views) + chatWeight*float64(s.Chats) + teamJoinWeight*float64(s.Teams)
}

// AggregateInteractions groups the requester's outbound interactions by
// target user. Rows from other actors and unknown actions are skipped.
// An empty requesterID accepts rows from any actor.
func AggregateInteractions(requesterID string, rows []Interaction) map[string]InteractionStats {
	out := make(map[string]InteractionStats)
	for _, r := range rows {
		if requesterID != "" && r.FromUserID != requesterID {
			continue
		}
		s := out[r.ToUserID]
		switch r.Action {
		case ActionView:
			s.Views++
		case ActionChat:
			s.Chats++
		case ActionTeamJoin:
			s.Teams++
		default:
			continue
		}
		out[r.ToUserID] = s
	}
	return out
}

// InteractionScore returns the normalized interaction score and the binary
// has-interaction flag. The flag is taken from the unclamped weighted sum so
// it stays sharp when the score saturates. Nil stats yield (0, 0).
func InteractionScore(stats *InteractionStats) (score, has float64) {
	if stats == nil {
		return 0, 0
	}
	raw := stats.raw()
	score = clamp01(raw / interactionScale)
	if raw > 0 {
		has = 1
	}
	return score, has
}

// SameDepartment is 1 when both departments are known, non-empty and equal.
func SameDepartment(a, b Demographics) float64 {
	if a.Department == nil || b.Department == nil {
		return 0
	}
	if *a.Department == "" || *b.Department == "" {
		return 0
	}
	if *a.Department == *b.Department {
		return 1
	}
	return 0
}

// YearSimilarity is 1 - min(|a-b|, 4)/4, or 0.5 when either year is unknown.
// A candidate outside the requester's preferred range is penalized by 0.6
// per violated bound; a degenerate range (min > max) can apply both.
func YearSimilarity(requesterYear, candidateYear *int, f *Filters) float64 {
	sim := neutralYearSim
	if requesterYear != nil && candidateYear != nil {
		d := math.Abs(float64(*requesterYear - *candidateYear))
		sim = 1 - math.Min(d, maxYearDistance)/maxYearDistance
	}

	if candidateYear != nil && f != nil {
		if f.PreferredYearMin != nil && *candidateYear < *f.PreferredYearMin {
			sim *= yearRangePenalty
		}
		if f.PreferredYearMax != nil && *candidateYear > *f.PreferredYearMax {
			sim *= yearRangePenalty
		}
	}
	return clamp01(sim)
}

// featureBuilder caches the resolved query so a pool is scored without
// re-normalizing the requester side for every candidate.
type featureBuilder struct {
	requester Candidate
	query     facets
	filters   *Filters
}

func newFeatureBuilder(requester Candidate, f *Filters) *featureBuilder {
	return &featureBuilder{
		requester: requester,
		query:     resolveQuery(requester.Post, f),
		filters:   f,
	}
}

func (b *featureBuilder) build(c Candidate, stats *InteractionStats) []float64 {
	s := scoreFacets(b.query, postFacets(c.Post))
	score, has := InteractionScore(stats)

	return []float64{
		clamp01(s.skills),
		clamp01(s.interests),
		clamp01(s.available),
		clamp01(s.personality),
		clamp01(s.experience),
		SameDepartment(b.requester.Profile, c.Profile),
		YearSimilarity(b.requester.Profile.Year, c.Profile.Year, b.filters),
		score,
		has,
	}
}

// BuildFeatures returns the feature vector for one (requester, candidate)
// pair in FeatureNames order. Facet query resolution follows the same
// override rules as RecommendByJaccard.
func BuildFeatures(requester, candidate Candidate, stats *InteractionStats, f *Filters) []float64 {
	return newFeatureBuilder(requester, f).build(candidate, stats)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
