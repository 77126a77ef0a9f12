package dataset

import (
	"strings"
	"testing"
)

func TestColumnsToDropUnknownType(t *testing.T) {
	if _, err := ColumnsToDrop("not_a_real_type", nil); err == nil {
		t.Fatal("expected error for unknown dataset type")
	}
}

func TestColumnsToDropFixedLists(t *testing.T) {
	tests := []struct {
		name     string
		dataset  Type
		expected []string
	}{
		{
			name:     "kepler leakage columns",
			dataset:  Kepler,
			expected: []string{"koi_disposition", "koi_score", "koi_pdisposition", "koi_teq_err1", "kepid"},
		},
		{
			name:     "k2 leakage columns",
			dataset:  K2,
			expected: []string{"disposition", "disc_facility", "soltype", "pl_name"},
		},
		{
			name:     "tess leakage columns",
			dataset:  Tess,
			expected: []string{"tfopwg_disp", "toi", "loc_rowid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drops, err := ColumnsToDrop(tt.dataset, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			set := make(map[string]bool, len(drops))
			for _, name := range drops {
				set[name] = true
			}
			for _, want := range tt.expected {
				if !set[want] {
					t.Errorf("expected %q in drop list for %s", want, tt.dataset)
				}
			}
		})
	}
}

func TestColumnsToDropLimitMarker(t *testing.T) {
	observed := []string{"koi_period", "koi_period_lim", "foo_lim_x", "climate"}
	drops, err := ColumnsToDrop(Kepler, observed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := make(map[string]bool, len(drops))
	for _, name := range drops {
		set[name] = true
	}
	if !set["koi_period_lim"] {
		t.Error("expected koi_period_lim to be dropped")
	}
	if !set["foo_lim_x"] {
		t.Error("expected foo_lim_x to be dropped")
	}
	// substring match is intentional, even mid-word
	if !set["climate"] {
		t.Error("expected climate to match the lim marker")
	}
	if set["koi_period"] {
		t.Error("koi_period should not be dropped")
	}
}

func TestColumnsToDropNoDuplicates(t *testing.T) {
	// koi_time0bk_err1 is on the fixed list; feed it as observed too
	drops, err := ColumnsToDrop(Kepler, []string{"koi_time0bk_err1", "x_lim", "x_lim"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := make(map[string]int)
	for _, name := range drops {
		counts[name]++
	}
	for name, n := range counts {
		if n > 1 {
			t.Errorf("column %q listed %d times", name, n)
		}
	}
}

func TestValid(t *testing.T) {
	for _, typ := range All() {
		if !Valid(typ) {
			t.Errorf("expected %s to be valid", typ)
		}
	}
	if Valid("exo") {
		t.Error("expected exo to be invalid")
	}
}

func TestUnknownTypeErrorListsAvailable(t *testing.T) {
	_, err := ColumnsToDrop("jwst", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "kepler") {
		t.Errorf("error should list available types, got %q", err.Error())
	}
}
