package ml

import (
	"math"
	"testing"
)

func testPreprocessor() *Preprocessor {
	return &Preprocessor{
		Features: []string{"koi_period", "koi_depth"},
		Means:    []float64{10, 100},
		Scales:   []float64{2, 50},
		Medians:  []float64{10, 100},
	}
}

func TestPreprocessorTransform(t *testing.T) {
	frame, err := NewFrame(map[string][]float64{
		"koi_period": {12, 8},
		"koi_depth":  {150, 50},
		"extra":      {1, 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	X, err := testPreprocessor().Transform(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(X) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(X))
	}
	if X[0][0] != 1 || X[0][1] != 1 {
		t.Errorf("unexpected standardized row 0: %v", X[0])
	}
	if X[1][0] != -1 || X[1][1] != -1 {
		t.Errorf("unexpected standardized row 1: %v", X[1])
	}
}

func TestPreprocessorTransformMissingFeature(t *testing.T) {
	frame, err := NewFrame(map[string][]float64{
		"koi_period": {12},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := testPreprocessor().Transform(frame); err == nil {
		t.Fatal("expected error for missing required feature")
	}
}

func TestPreprocessorImputesNaN(t *testing.T) {
	frame, err := NewFrame(map[string][]float64{
		"koi_period": {math.NaN()},
		"koi_depth":  {100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	X, err := testPreprocessor().Transform(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// NaN imputed with the median, which equals the mean here
	if X[0][0] != 0 {
		t.Errorf("expected imputed value to standardize to 0, got %f", X[0][0])
	}
}

func TestDecodePreprocessor(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "valid",
			payload: `{"features":["a"],"means":[0],"scales":[1],"medians":[0]}`,
			wantErr: false,
		},
		{
			name:    "no features",
			payload: `{"features":[],"means":[],"scales":[],"medians":[]}`,
			wantErr: true,
		},
		{
			name:    "mismatched stats",
			payload: `{"features":["a","b"],"means":[0],"scales":[1],"medians":[0]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `not json`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePreprocessor([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
