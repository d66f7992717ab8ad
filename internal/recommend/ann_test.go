package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityWeights passes every feature through its own hidden unit and sums them.
func identityWeights(n int, outW, bias float64) *Weights {
	w := &Weights{InputSize: n, HiddenSize: n, B1: make([]float64, n), W2: make([]float64, n), B2: bias}
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		row[i] = 1
		w.W1 = append(w.W1, row)
		w.W2[i] = outW
	}
	return w
}

func TestPredict_ForwardPass(t *testing.T) {
	w := &Weights{
		InputSize:  2,
		HiddenSize: 2,
		W1:         [][]float64{{1, 2}, {-1, -1}},
		B1:         []float64{0.5, 0},
		W2:         []float64{1, 5},
		B2:         -1,
	}

	// h = relu([0.5+1+0.4, -1-0.2]) = [1.9, 0]; y = -1 + 1.9 = 0.9
	got, err := Predict([]float64{1, 0.2}, w)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.9)), got, 1e-12)
}

func TestPredict_DimensionMismatch(t *testing.T) {
	w := identityWeights(FeatureCount, 1, 0)

	_, err := Predict(make([]float64, 8), w)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPredict_Saturation(t *testing.T) {
	w := identityWeights(1, 1, 0)

	w.B2 = 30
	got, err := Predict([]float64{0}, w)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	w.B2 = -30
	got, err = Predict([]float64{0}, w)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	w.B2 = 0
	got, err = Predict([]float64{0}, w)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)
}

func TestPredict_Range(t *testing.T) {
	inputs := [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1, 1, 1, 1, 1},
		{0.3, 0.9, 0, 1, 0.2, 0, 0.5, 0.04, 1},
	}
	bundles := []*Weights{
		identityWeights(FeatureCount, 100, 0),
		identityWeights(FeatureCount, -100, 0),
		identityWeights(FeatureCount, 0.7, -2),
	}

	for _, w := range bundles {
		for _, x := range inputs {
			got, err := Predict(x, w)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       *Weights
		wantErr error
	}{
		{name: "nil", w: nil, wantErr: ErrNoWeights},
		{name: "ok", w: identityWeights(3, 1, 0)},
		{name: "zero input", w: &Weights{}, wantErr: ErrDimensionMismatch},
		{name: "short w1", w: &Weights{InputSize: 2, W1: [][]float64{{1, 1}}, B1: []float64{0, 0}, W2: []float64{1, 1}}, wantErr: ErrDimensionMismatch},
		{name: "ragged row", w: &Weights{InputSize: 2, W1: [][]float64{{1, 1}, {1}}, B1: []float64{0, 0}, W2: []float64{1, 1}}, wantErr: ErrDimensionMismatch},
		{name: "short b1", w: &Weights{InputSize: 1, W1: [][]float64{{1}}, W2: []float64{1}}, wantErr: ErrDimensionMismatch},
		{name: "hidden defaults to input", w: &Weights{InputSize: 1, W1: [][]float64{{1}}, B1: []float64{0}, W2: []float64{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecommendByANN(t *testing.T) {
	me := Candidate{
		UserID:  "me",
		Post:    &Post{ID: "p-me", UserID: "me", Skills: Array("Go", "SQL")},
		Profile: Demographics{Department: strp("CS"), Year: intp(2)},
	}
	pool := []Candidate{
		me,
		{UserID: "nopost", Profile: Demographics{Department: strp("CS")}},
		{UserID: "weak", Post: &Post{ID: "p-weak", UserID: "weak", Skills: Array("Rust")}},
		{UserID: "strong", Post: &Post{ID: "p-strong", UserID: "strong", Skills: Array("Go", "SQL")}, Profile: Demographics{Department: strp("CS"), Year: intp(2)}},
	}
	stats := map[string]InteractionStats{"weak": {Chats: 2}}

	got, err := RecommendByANN(me, pool, stats, identityWeights(FeatureCount, 1, -2), 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "strong", got[0].UserID)
	assert.Equal(t, "p-strong", got[0].PostID)
	assert.Equal(t, "weak", got[1].UserID)
	assert.Greater(t, got[0].Score, got[1].Score)
	assert.Equal(t, FeatureNames, got[0].FeatureNames)
	assert.Len(t, got[0].Features, FeatureCount)
	assert.Equal(t, 1.0, got[1].Features[8], "past interaction flag")

	top1, err := RecommendByANN(me, pool, stats, identityWeights(FeatureCount, 1, -2), 1, nil)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, "strong", top1[0].UserID)
}

func TestRecommendByANN_Errors(t *testing.T) {
	me := Candidate{UserID: "me", Post: &Post{ID: "p-me", UserID: "me"}}

	_, err := RecommendByANN(me, nil, nil, nil, 5, nil)
	assert.ErrorIs(t, err, ErrNoWeights)

	_, err = RecommendByANN(me, nil, nil, identityWeights(8, 1, 0), 5, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	got, err := RecommendByANN(Candidate{UserID: "me"}, []Candidate{{UserID: "x", Post: &Post{ID: "p"}}}, nil, identityWeights(FeatureCount, 1, 0), 5, nil)
	require.NoError(t, err)
	assert.Empty(t, got, "requester without a post gets nothing")
}

func TestPipelines_Deterministic(t *testing.T) {
	me := Candidate{UserID: "me", Post: &Post{ID: "p-me", UserID: "me", Skills: Array("Go"), Interests: Array("infra")}}
	pool := []Candidate{
		{UserID: "a", Post: &Post{ID: "p-a", UserID: "a", Skills: Array("Go")}},
		{UserID: "b", Post: &Post{ID: "p-b", UserID: "b", Interests: Array("infra")}},
		{UserID: "c", Post: &Post{ID: "p-c", UserID: "c", Skills: Array("Go"), Interests: Array("infra")}},
	}
	posts := []Post{*pool[0].Post, *pool[1].Post, *pool[2].Post}
	w := identityWeights(FeatureCount, 0.8, -1)

	first := RecommendByJaccard(*me.Post, posts, 10, nil)
	firstANN, err := RecommendByANN(me, pool, nil, w, 10, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, RecommendByJaccard(*me.Post, posts, 10, nil))
		again, err := RecommendByANN(me, pool, nil, w, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, firstANN, again)
	}
}
