// Package dataset enumerates the supported survey dataset types and the
// per-type column exclusion rules applied before preprocessing.
package dataset

import (
	"fmt"
	"strings"
)

// Type identifies which survey a batch of candidate rows comes from and
// selects the model, preprocessor and pruning rules used for it.
type Type string

const (
	Kepler Type = "kepler"
	K2     Type = "k2"
	Tess   Type = "tess"
)

// limitMarker flags per-feature limit columns (koi_period_lim etc.) that the
// models were never trained on. Matched as a case-sensitive substring.
const limitMarker = "lim"

// dropColumns lists, per dataset type, the identifier and leakage columns
// that must be stripped before preprocessing. Disposition and score fields
// encode the ground-truth label the model is supposed to predict, so leaving
// any of them in would let the model cheat.
var dropColumns = map[Type][]string{
	Kepler: {
		"kepid", "kepoi_name", "kepler_name", "koi_time0bk",
		"koi_teq_err1", "koi_teq_err2", "koi_time0bk_err1", "koi_time0bk_err2",
		"koi_tce_plnt_num", "koi_tce_delivname", "ra", "dec",
		"koi_pdisposition", "koi_score", "koi_disposition",
	},
	K2: {
		"pl_name", "hostname", "disp_refname", "disc_year", "pl_refname",
		"st_refname", "sy_refname", "rastr", "ra", "decstr", "dec",
		"rowupdate", "pl_pubdate", "releasedate", "discoverymethod",
		"soltype", "disc_facility", "disposition",
	},
	Tess: {
		"loc_rowid", "toi", "tid", "rastr", "decstr",
		"toi_created", "rowupdate", "tfopwg_disp",
	},
}

// All returns the supported dataset types in stable order.
func All() []Type {
	return []Type{Kepler, K2, Tess}
}

// Valid reports whether t is a supported dataset type.
func Valid(t Type) bool {
	_, ok := dropColumns[t]
	return ok
}

// ColumnsToDrop returns the columns to strip from a batch with the given
// observed column names: the fixed exclusion list for t plus every observed
// column whose name contains the limit marker. Listed columns absent from
// the batch are harmless; dropping is best effort downstream.
func ColumnsToDrop(t Type, observed []string) ([]string, error) {
	fixed, ok := dropColumns[t]
	if !ok {
		return nil, fmt.Errorf("unknown dataset type: %q (available: %v)", t, All())
	}

	seen := make(map[string]bool, len(fixed))
	drops := make([]string, 0, len(fixed))
	for _, name := range fixed {
		if !seen[name] {
			seen[name] = true
			drops = append(drops, name)
		}
	}
	for _, name := range observed {
		if strings.Contains(name, limitMarker) && !seen[name] {
			seen[name] = true
			drops = append(drops, name)
		}
	}
	return drops, nil
}
