// Package encoder turns feature rows into model input vectors.
//
// Categorical columns are one-hot encoded against their sorted training
// categories with the first category of each column dropped. A category
// never seen in training encodes as an all-zero block and is reported back
// to the caller. Numeric columns follow the categorical block unchanged.
package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yourusername/chase-predictor/internal/models"
)

var (
	// ErrNotFitted is returned when transforming before Fit or Load
	ErrNotFitted = errors.New("encoder not fitted")
	// ErrColumnMismatch is returned when a persisted encoder has a different column layout
	ErrColumnMismatch = errors.New("encoder column layout mismatch")
	// ErrNoRows is returned when fitting on an empty table
	ErrNoRows = errors.New("no rows to fit")
)

// UnknownCategory names a categorical value absent from training
type UnknownCategory struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (u UnknownCategory) String() string {
	return fmt.Sprintf("%s=%q", u.Column, u.Value)
}

// OneHotEncoder is a fitted drop-first, ignore-unknown one-hot encoder
type OneHotEncoder struct {
	Categorical []string   `json:"categorical"`
	Numeric     []string   `json:"numeric"`
	Categories  [][]string `json:"categories"`

	offsets []int
	lookup  []map[string]int
	width   int
}

// New returns an unfitted encoder over the standard feature columns
func New() *OneHotEncoder {
	return &OneHotEncoder{
		Categorical: append([]string(nil), models.CategoricalColumns...),
		Numeric:     append([]string(nil), models.NumericColumns...),
	}
}

// Fit learns the sorted category set of every categorical column
func (e *OneHotEncoder) Fit(rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	sets := make([]map[string]struct{}, len(e.Categorical))
	for j := range sets {
		sets[j] = make(map[string]struct{})
	}
	for i := range rows {
		for j, v := range rows[i].Categories() {
			sets[j][v] = struct{}{}
		}
	}

	e.Categories = make([][]string, len(sets))
	for j, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		e.Categories[j] = values
	}

	e.index()
	return nil
}

// index rebuilds the lookup tables from Categories
func (e *OneHotEncoder) index() {
	e.offsets = make([]int, len(e.Categories))
	e.lookup = make([]map[string]int, len(e.Categories))
	width := 0
	for j, values := range e.Categories {
		e.offsets[j] = width
		e.lookup[j] = make(map[string]int, len(values))
		for k, v := range values {
			e.lookup[j][v] = k
		}
		if len(values) > 0 {
			width += len(values) - 1
		}
	}
	e.width = width + len(e.Numeric)
}

// Fitted reports whether the encoder can transform rows
func (e *OneHotEncoder) Fitted() bool {
	return e.lookup != nil
}

// Width returns the length of an encoded vector
func (e *OneHotEncoder) Width() int {
	return e.width
}

// Transform encodes one row. Unknown categories are encoded as zeros and returned.
func (e *OneHotEncoder) Transform(row *models.FeatureRow) ([]float64, []UnknownCategory, error) {
	if !e.Fitted() {
		return nil, nil, ErrNotFitted
	}

	x := make([]float64, e.width)
	var unknown []UnknownCategory
	for j, v := range row.Categories() {
		k, ok := e.lookup[j][v]
		if !ok {
			unknown = append(unknown, UnknownCategory{Column: e.Categorical[j], Value: v})
			continue
		}
		if k > 0 {
			x[e.offsets[j]+k-1] = 1
		}
	}

	copy(x[e.width-len(e.Numeric):], row.Numerics())
	return x, unknown, nil
}

// TransformAll encodes a batch of rows, ignoring unknown categories
func (e *OneHotEncoder) TransformAll(rows []models.FeatureRow) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i := range rows {
		x, _, err := e.Transform(&rows[i])
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// FeatureNames returns the encoded column names in vector order
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.width)
	for j, values := range e.Categories {
		for _, v := range values[min(1, len(values)):] {
			names = append(names, e.Categorical[j]+"_"+v)
		}
	}
	return append(names, e.Numeric...)
}

// Save writes the encoder as JSON
func (e *OneHotEncoder) Save(path string) error {
	if !e.Fitted() {
		return ErrNotFitted
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal encoder: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads an encoder written by Save
func Load(path string) (*OneHotEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var e OneHotEncoder
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode encoder: %w", err)
	}
	if !equal(e.Categorical, models.CategoricalColumns) || !equal(e.Numeric, models.NumericColumns) ||
		len(e.Categories) != len(e.Categorical) {
		return nil, ErrColumnMismatch
	}

	e.index()
	return &e, nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
