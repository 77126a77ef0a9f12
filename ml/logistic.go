package ml

import (
	"errors"
	"fmt"
	"math"
)

// LogisticModel is a trained logistic regression classifier. Weights holds
// one row per class; a single row means a binary model whose sigmoid output
// is the probability of class 1. The canonical score is always the
// probability assigned to class index 0.
type LogisticModel struct {
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

func (m *LogisticModel) Kind() string { return KindLogistic }

func (m *LogisticModel) validate() error {
	if len(m.Weights) == 0 {
		return errors.New("logistic model has no weights")
	}
	if len(m.Intercepts) != len(m.Weights) {
		return errors.New("logistic model intercept count does not match class count")
	}
	dim := len(m.Weights[0])
	if dim == 0 {
		return errors.New("logistic model has zero feature dimension")
	}
	for _, row := range m.Weights[1:] {
		if len(row) != dim {
			return errors.New("logistic model weight rows have mixed dimensions")
		}
	}
	return nil
}

// Predict returns, per row, the most probable class label and the
// probability mass at class index 0.
func (m *LogisticModel) Predict(X [][]float64) ([]Prediction, error) {
	out := make([]Prediction, len(X))
	for i, x := range X {
		if len(x) != len(m.Weights[0]) {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(x), len(m.Weights[0]))
		}
		probs := m.proba(x)
		label := 0
		best := probs[0]
		for c, p := range probs[1:] {
			if p > best {
				best = p
				label = c + 1
			}
		}
		out[i] = Prediction{Label: label, Score: probs[0]}
	}
	return out, nil
}

// proba computes the class probability vector for one row. Binary models
// carry a single weight row and expand to [1-p, p].
func (m *LogisticModel) proba(x []float64) []float64 {
	if len(m.Weights) == 1 {
		p := sigmoid(dot(m.Weights[0], x) + m.Intercepts[0])
		return []float64{1 - p, p}
	}

	scores := make([]float64, len(m.Weights))
	maxScore := math.Inf(-1)
	for c, row := range m.Weights {
		scores[c] = dot(row, x) + m.Intercepts[c]
		if scores[c] > maxScore {
			maxScore = scores[c]
		}
	}
	var sum float64
	for c := range scores {
		scores[c] = math.Exp(scores[c] - maxScore)
		sum += scores[c]
	}
	for c := range scores {
		scores[c] /= sum
	}
	return scores
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(w, x []float64) float64 {
	var s float64
	for i := range w {
		s += w[i] * x[i]
	}
	return s
}
