package recommend

import (
	"fmt"
	"sort"
)

// ANNResult is one ranked candidate of the network pipeline.
type ANNResult struct {
	UserID       string    `json:"user_id"`
	PostID       string    `json:"post_id"`
	Score        float64   `json:"score"`
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
}

// RecommendByANN scores every candidate that has a post with the network,
// highest first, keeping at most k. The requester and post-less candidates
// are excluded before scoring. A requester without a post yields no results.
//
// stats maps target user id to the requester's interaction counts; a
// missing entry means no history. The weight bundle must accept exactly
// FeatureCount inputs.
func RecommendByANN(requester Candidate, pool []Candidate, stats map[string]InteractionStats, w *Weights, k int, f *Filters) ([]ANNResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if w.InputSize != FeatureCount {
		return nil, fmt.Errorf("%w: weights take %d inputs, features have %d", ErrDimensionMismatch, w.InputSize, FeatureCount)
	}
	if requester.Post == nil {
		return []ANNResult{}, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	b := newFeatureBuilder(requester, f)
	results := make([]ANNResult, 0, len(pool))

	for _, c := range pool {
		if c.Post == nil || c.UserID == requester.UserID {
			continue
		}

		var st *InteractionStats
		if s, ok := stats[c.UserID]; ok {
			st = &s
		}

		x := b.build(c, st)
		score, err := Predict(x, w)
		if err != nil {
			return nil, err
		}

		results = append(results, ANNResult{
			UserID:       c.UserID,
			PostID:       c.Post.ID,
			Score:        score,
			Features:     x,
			FeatureNames: FeatureNames,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
