package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Preprocessor reproduces at inference time the feature selection, median
// imputation and standardization that were fit during training. It is
// serialized alongside its model and loaded from the artifact store.
type Preprocessor struct {
	// Features lists the required input columns in the order the model
	// expects them.
	Features []string  `json:"features"`
	Means    []float64 `json:"means"`
	Scales   []float64 `json:"scales"`
	Medians  []float64 `json:"medians"`
}

// DecodePreprocessor deserializes a preprocessor artifact and validates its
// internal consistency.
func DecodePreprocessor(data []byte) (*Preprocessor, error) {
	var p Preprocessor
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode preprocessor: %w", err)
	}
	if len(p.Features) == 0 {
		return nil, errors.New("preprocessor has no features")
	}
	if len(p.Means) != len(p.Features) || len(p.Scales) != len(p.Features) || len(p.Medians) != len(p.Features) {
		return nil, errors.New("preprocessor stats do not match feature count")
	}
	return &p, nil
}

// Transform selects the required feature columns from f, imputes NaN cells
// with the fitted medians and standardizes with the fitted mean/scale.
// Extra columns in f are ignored; a missing required feature is an error.
// Row count and order are preserved.
func (p *Preprocessor) Transform(f *Frame) ([][]float64, error) {
	cols := make([][]float64, len(p.Features))
	for j, name := range p.Features {
		values, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("missing required feature %q", name)
		}
		cols[j] = values
	}

	rows := f.Rows()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		vec := make([]float64, len(p.Features))
		for j := range p.Features {
			v := cols[j][i]
			if math.IsNaN(v) {
				v = p.Medians[j]
			}
			scale := p.Scales[j]
			if scale == 0 {
				scale = 1
			}
			vec[j] = (v - p.Means[j]) / scale
		}
		out[i] = vec
	}
	return out, nil
}
