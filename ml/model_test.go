package ml

import (
	"math"
	"testing"
)

func TestLogisticModelBinary(t *testing.T) {
	model := &LogisticModel{
		Weights:    [][]float64{{2, 0}},
		Intercepts: []float64{0},
	}

	preds, err := model.Predict([][]float64{{3, 0}, {-3, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// strongly positive input: class 1, so little mass at class 0
	if preds[0].Label != 1 {
		t.Errorf("expected label 1, got %d", preds[0].Label)
	}
	if preds[0].Score >= 0.5 {
		t.Errorf("expected class-0 probability below 0.5, got %f", preds[0].Score)
	}
	if preds[1].Label != 0 {
		t.Errorf("expected label 0, got %d", preds[1].Label)
	}
	for _, p := range preds {
		if p.Score < 0 || p.Score > 1 {
			t.Errorf("score out of range: %f", p.Score)
		}
	}
}

func TestLogisticModelMulticlass(t *testing.T) {
	model := &LogisticModel{
		Weights:    [][]float64{{1, 0}, {0, 1}, {-1, -1}},
		Intercepts: []float64{0, 0, 0},
	}

	preds, err := model.Predict([][]float64{{5, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preds[0].Label != 0 {
		t.Errorf("expected label 0, got %d", preds[0].Label)
	}
	// label 0 dominates, so its probability mass must too
	if preds[0].Score <= 0.5 {
		t.Errorf("expected dominant class-0 probability, got %f", preds[0].Score)
	}

	probs := model.proba([]float64{0.3, -0.7})
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities should sum to 1, got %f", sum)
	}
}

func TestLogisticModelDimensionMismatch(t *testing.T) {
	model := &LogisticModel{
		Weights:    [][]float64{{1, 2}},
		Intercepts: []float64{0},
	}
	if _, err := model.Predict([][]float64{{1}}); err == nil {
		t.Fatal("expected error for feature dimension mismatch")
	}
}

func TestThresholdModelLabels(t *testing.T) {
	model := &ThresholdModel{
		Weights:   []float64{1},
		Intercept: 0,
		Threshold: 0.5,
	}

	tests := []struct {
		name      string
		input     float64
		wantLabel int
		wantScore float64
	}{
		{name: "below threshold", input: 0.2, wantLabel: 0, wantScore: 0.2},
		{name: "at threshold", input: 0.5, wantLabel: 1, wantScore: 0.5},
		{name: "above threshold", input: 0.9, wantLabel: 1, wantScore: 0.9},
		{name: "clamped low", input: -3, wantLabel: 0, wantScore: 0},
		{name: "clamped high", input: 7, wantLabel: 1, wantScore: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds, err := model.Predict([][]float64{{tt.input}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if preds[0].Label != tt.wantLabel {
				t.Errorf("expected label %d, got %d", tt.wantLabel, preds[0].Label)
			}
			if preds[0].Score != tt.wantScore {
				t.Errorf("expected score %f, got %f", tt.wantScore, preds[0].Score)
			}
		})
	}
}

func TestDecodeModel(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		payload string
		wantErr bool
	}{
		{
			name:    "logistic",
			kind:    KindLogistic,
			payload: `{"weights":[[0.5,-0.2]],"intercepts":[0.1]}`,
			wantErr: false,
		},
		{
			name:    "threshold",
			kind:    KindThreshold,
			payload: `{"weights":[0.5],"intercept":0.1,"threshold":0.5}`,
			wantErr: false,
		},
		{
			name:    "unsupported kind",
			kind:    "random_forest",
			payload: `{}`,
			wantErr: true,
		},
		{
			name:    "logistic without weights",
			kind:    KindLogistic,
			payload: `{"weights":[],"intercepts":[]}`,
			wantErr: true,
		},
		{
			name:    "corrupt payload",
			kind:    KindThreshold,
			payload: `{{{`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := DecodeModel(tt.kind, []byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err == nil && model.Kind() != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, model.Kind())
			}
		})
	}
}

func TestDecodeModelDefaultsThreshold(t *testing.T) {
	model, err := DecodeModel(KindThreshold, []byte(`{"weights":[1],"intercept":0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tm := model.(*ThresholdModel)
	if tm.Threshold != 0.5 {
		t.Errorf("expected default threshold 0.5, got %f", tm.Threshold)
	}
}
