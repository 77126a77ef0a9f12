package ml

import (
	"errors"
	"fmt"
)

// ThresholdModel is a linear regressor trained against 0/1 dispositions and
// used as a classifier: the regression output, clamped to [0, 1], is the
// canonical score and the label is 1 when the score reaches the threshold.
type ThresholdModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold"`
}

func (m *ThresholdModel) Kind() string { return KindThreshold }

func (m *ThresholdModel) validate() error {
	if len(m.Weights) == 0 {
		return errors.New("threshold model has no weights")
	}
	if m.Threshold == 0 {
		m.Threshold = 0.5
	}
	return nil
}

// Predict returns, per row, the clamped regression score and the thresholded
// label (score >= threshold means label 1).
func (m *ThresholdModel) Predict(X [][]float64) ([]Prediction, error) {
	out := make([]Prediction, len(X))
	for i, x := range X {
		if len(x) != len(m.Weights) {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(x), len(m.Weights))
		}
		score := clamp01(dot(m.Weights, x) + m.Intercept)
		label := 0
		if score >= m.Threshold {
			label = 1
		}
		out[i] = Prediction{Label: label, Score: score}
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
