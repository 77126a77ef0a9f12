package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Frame is a column-major tabular batch: named feature columns of equal
// length. Cell values are float64; missing or non-numeric cells are NaN and
// left for the preprocessor to impute or reject.
type Frame struct {
	columns []string
	data    map[string][]float64
	rows    int
}

// NewFrame builds a frame from ready feature columns. All columns must have
// the same, non-zero length.
func NewFrame(columns map[string][]float64) (*Frame, error) {
	if len(columns) == 0 {
		return nil, errors.New("empty dataset")
	}

	names := make([]string, 0, len(columns))
	rows := -1
	for name, values := range columns {
		names = append(names, name)
		if rows == -1 {
			rows = len(values)
		} else if len(values) != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", name, len(values), rows)
		}
	}
	if rows == 0 {
		return nil, errors.New("empty dataset")
	}
	sort.Strings(names)

	data := make(map[string][]float64, len(columns))
	for name, values := range columns {
		data[name] = append([]float64(nil), values...)
	}
	return &Frame{columns: names, data: data, rows: rows}, nil
}

// FrameFromJSON builds a frame from the request "data" payload, accepting
// either a column-oriented object {feature: [v, ...], ...} or a row-oriented
// array [{feature: v, ...}, ...].
func FrameFromJSON(raw json.RawMessage) (*Frame, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty dataset")
	}

	trimmed := firstNonSpace(raw)
	switch trimmed {
	case '{':
		var byColumn map[string][]json.RawMessage
		if err := json.Unmarshal(raw, &byColumn); err != nil {
			return nil, fmt.Errorf("data must map feature names to value lists: %w", err)
		}
		return frameFromColumns(byColumn)
	case '[':
		var byRow []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byRow); err != nil {
			return nil, fmt.Errorf("data rows must be feature-to-value objects: %w", err)
		}
		return frameFromRows(byRow)
	default:
		return nil, errors.New("data must be an object of columns or an array of rows")
	}
}

func frameFromColumns(byColumn map[string][]json.RawMessage) (*Frame, error) {
	if len(byColumn) == 0 {
		return nil, errors.New("empty dataset")
	}
	columns := make(map[string][]float64, len(byColumn))
	for name, raws := range byColumn {
		values := make([]float64, len(raws))
		for i, r := range raws {
			values[i] = coerceCell(r)
		}
		columns[name] = values
	}
	return NewFrame(columns)
}

func frameFromRows(byRow []map[string]json.RawMessage) (*Frame, error) {
	if len(byRow) == 0 {
		return nil, errors.New("empty dataset")
	}

	// Union of keys across rows; cells absent from a row become NaN.
	names := make(map[string]bool)
	for _, row := range byRow {
		for name := range row {
			names[name] = true
		}
	}
	if len(names) == 0 {
		return nil, errors.New("empty dataset")
	}

	columns := make(map[string][]float64, len(names))
	for name := range names {
		values := make([]float64, len(byRow))
		for i, row := range byRow {
			if r, ok := row[name]; ok {
				values[i] = coerceCell(r)
			} else {
				values[i] = math.NaN()
			}
		}
		columns[name] = values
	}
	return NewFrame(columns)
}

// coerceCell converts one JSON value to float64. Numeric strings are
// accepted; null and anything non-numeric become NaN.
func coerceCell(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

func firstNonSpace(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// Rows returns the number of samples in the frame.
func (f *Frame) Rows() int { return f.rows }

// Columns returns the column names in sorted order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Column returns the values for name, or false if the column is absent.
func (f *Frame) Column(name string) ([]float64, bool) {
	values, ok := f.data[name]
	return values, ok
}

// Drop removes the named columns from the frame. Columns that are not
// present are ignored, so dropping is idempotent. Rows are never touched.
func (f *Frame) Drop(names ...string) {
	dropped := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := f.data[name]; ok {
			delete(f.data, name)
			dropped[name] = true
		}
	}
	if len(dropped) == 0 {
		return
	}
	kept := f.columns[:0]
	for _, name := range f.columns {
		if !dropped[name] {
			kept = append(kept, name)
		}
	}
	f.columns = kept
}
