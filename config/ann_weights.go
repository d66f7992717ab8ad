package config

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/teamup-campus/teamup/internal/recommend"
)

// DefaultANNWeights is the hand-tuned 9→9→1 bundle. Feature order follows
// recommend.FeatureNames: skills, interests, available, personality,
// experience, same_department, year_similarity, interaction_score,
// has_past_interaction.
func DefaultANNWeights() *recommend.Weights {
	return &recommend.Weights{
		InputSize:  recommend.FeatureCount,
		HiddenSize: 9,
		W1: [][]float64{
			{1.0, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 1.0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0.6, 0.4, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 1.0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0.7, 0.3, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 1.0, 0.2},
			{0.5, 0.5, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 1.0, 0, 0},
			{0.6, 0, 0, 0, 0, 0.4, 0, 0, 0},
		},
		B1: []float64{0, 0, 0, 0, 0, 0, -0.2, -0.5, -0.5},
		W2: []float64{2.2, 1.6, 0.8, 0.6, 0.7, 1.5, 1.4, 0.8, 1.2},
		B2: -3.2,
	}
}

// LoadANNWeights reads a JSON weight bundle from path, or returns the
// default bundle when path is empty. The bundle must take exactly
// recommend.FeatureCount inputs.
func LoadANNWeights(path string) (*recommend.Weights, error) {
	if path == "" {
		return DefaultANNWeights(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ann weights: %w", err)
	}

	var w recommend.Weights
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decode ann weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ann weights %s: %w", path, err)
	}
	if w.InputSize != recommend.FeatureCount {
		return nil, fmt.Errorf("invalid ann weights %s: %w: input size %d, want %d",
			path, recommend.ErrDimensionMismatch, w.InputSize, recommend.FeatureCount)
	}
	return &w, nil
}
