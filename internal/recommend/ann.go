package recommend

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch means a feature vector or weight matrix does not
	// match the declared shape. It is a configuration defect, never data quality.
	ErrDimensionMismatch = errors.New("recommend: dimension mismatch")
	ErrNoWeights         = errors.New("recommend: no ann weights")
)

// sigmoid saturation bounds; beyond them exp would only lose precision.
const sigmoidCutoff = 30

// Weights is an immutable 1-hidden-layer network: input → ReLU hidden → sigmoid output.
// HiddenSize 0 means "same as InputSize".
type Weights struct {
	InputSize  int         `json:"input_size"`
	HiddenSize int         `json:"hidden_size"`
	W1         [][]float64 `json:"w1"` // [hidden][input]
	B1         []float64   `json:"b1"` // [hidden]
	W2         []float64   `json:"w2"` // [hidden]
	B2         float64     `json:"b2"`
}

func (w *Weights) hidden() int {
	if w.HiddenSize > 0 {
		return w.HiddenSize
	}
	return w.InputSize
}

// Validate checks that every matrix and vector matches the declared sizes.
func (w *Weights) Validate() error {
	if w == nil {
		return ErrNoWeights
	}
	if w.InputSize <= 0 {
		return fmt.Errorf("%w: input size %d", ErrDimensionMismatch, w.InputSize)
	}
	h := w.hidden()
	if len(w.W1) != h {
		return fmt.Errorf("%w: w1 has %d rows, want %d", ErrDimensionMismatch, len(w.W1), h)
	}
	for i, row := range w.W1 {
		if len(row) != w.InputSize {
			return fmt.Errorf("%w: w1 row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), w.InputSize)
		}
	}
	if len(w.B1) != h {
		return fmt.Errorf("%w: b1 has %d entries, want %d", ErrDimensionMismatch, len(w.B1), h)
	}
	if len(w.W2) != h {
		return fmt.Errorf("%w: w2 has %d entries, want %d", ErrDimensionMismatch, len(w.W2), h)
	}
	return nil
}

// Predict runs the forward pass and returns a score in [0, 1].
// A feature vector whose length differs from InputSize is refused.
func Predict(x []float64, w *Weights) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	if len(x) != w.InputSize {
		return 0, fmt.Errorf("%w: expected %d features, got %d", ErrDimensionMismatch, w.InputSize, len(x))
	}

	y := w.B2
	for i, row := range w.W1 {
		h := w.B1[i]
		for j, wij := range row {
			h += wij * x[j]
		}
		if h > 0 {
			y += w.W2[i] * h
		}
	}
	return sigmoid(y), nil
}

func sigmoid(y float64) float64 {
	if y <= -sigmoidCutoff {
		return 0
	}
	if y >= sigmoidCutoff {
		return 1
	}
	return 1 / (1 + math.Exp(-y))
}
