package ml

import (
	"encoding/json"
	"fmt"
)

// Model kinds understood by DecodeModel. Each dataset type is bound to
// exactly one kind by the serving registry, so output normalization is a
// closed dispatch rather than a string comparison at prediction time.
const (
	KindLogistic  = "logistic"
	KindThreshold = "threshold"
)

// Prediction is the canonical per-row output: a discrete label and the
// positive-class score in [0, 1], regardless of which model kind produced it.
type Prediction struct {
	Label int
	Score float64
}

// Model is a loaded, immutable trained model. Implementations normalize
// their native output into canonical Predictions:
//
//   - LogisticModel predicts a class label and reports the probability mass
//     at class index 0 (the candidate class, by training column convention).
//   - ThresholdModel predicts a continuous score and derives the label by
//     thresholding.
type Model interface {
	// Predict scores one preprocessed row per element of X, preserving order.
	Predict(X [][]float64) ([]Prediction, error)
	// Kind returns the model kind used to serialize this model.
	Kind() string
}

// DecodeModel deserializes a model artifact of the given kind.
func DecodeModel(kind string, data []byte) (Model, error) {
	switch kind {
	case KindLogistic:
		var m LogisticModel
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode logistic model: %w", err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return &m, nil
	case KindThreshold:
		var m ThresholdModel
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode threshold model: %w", err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unsupported model kind: %q", kind)
	}
}
