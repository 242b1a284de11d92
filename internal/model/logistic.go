// Package model implements the binary chase-outcome classifier.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
)

var (
	ErrNotFitted         = errors.New("model not fitted")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrSingleClass       = errors.New("training labels contain a single class")
	ErrEmptyDataset      = errors.New("empty training set")
)

// TrainingOptions controls gradient descent
type TrainingOptions struct {
	MaxIter      int     `default:"1000" json:"max_iter" yaml:"max_iter"`
	LearningRate float64 `default:"0.5" json:"learning_rate" yaml:"learning_rate"`
	L2           float64 `default:"0.0001" json:"l2" yaml:"l2"`
	Tolerance    float64 `default:"0.000001" json:"tolerance" yaml:"tolerance"`
}

// DefaultTrainingOptions returns the options used when none are configured
func DefaultTrainingOptions() TrainingOptions {
	var opts TrainingOptions
	defaults.MustSet(&opts)
	return opts
}

// LogisticRegression is an L2-regularised logistic regression over
// standardised inputs. Means and Scales are learned with the weights.
type LogisticRegression struct {
	Version      string          `json:"version"`
	FeatureNames []string        `json:"feature_names"`
	Weights      []float64       `json:"weights"`
	Bias         float64         `json:"bias"`
	Means        []float64       `json:"means"`
	Scales       []float64       `json:"scales"`
	Iterations   int             `json:"iterations"`
	Converged    bool            `json:"converged"`
	Options      TrainingOptions `json:"options"`
}

// Fit trains on X and binary labels y
func Fit(X [][]float64, y []float64, opts TrainingOptions) (*LogisticRegression, error) {
	if len(X) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(X), len(y))
	}
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("failed to apply training defaults: %w", err)
	}

	width := len(X[0])
	positives := 0.0
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), width)
		}
		positives += y[i]
	}
	if positives == 0 || positives == float64(len(y)) {
		return nil, ErrSingleClass
	}

	m := &LogisticRegression{Options: opts}
	m.Means, m.Scales = standardisation(X, width)
	Z := make([][]float64, len(X))
	for i, row := range X {
		Z[i] = m.scale(row)
	}

	n := float64(len(Z))
	w := make([]float64, width)
	grad := make([]float64, width)
	var b float64

	for iter := 1; iter <= opts.MaxIter; iter++ {
		for k := range grad {
			grad[k] = 0
		}
		var gradB float64
		for i, z := range Z {
			err := sigmoid(b+dot(w, z)) - y[i]
			for k := range grad {
				grad[k] += err * z[k]
			}
			gradB += err
		}

		maxGrad := math.Abs(gradB / n)
		for k := range w {
			g := grad[k]/n + opts.L2*w[k]
			w[k] -= opts.LearningRate * g
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		b -= opts.LearningRate * gradB / n

		m.Iterations = iter
		if maxGrad < opts.Tolerance {
			m.Converged = true
			break
		}
	}

	m.Weights = w
	m.Bias = b
	return m, nil
}

// standardisation returns per-column means and standard deviations.
// Constant columns get a scale of 1.
func standardisation(X [][]float64, width int) ([]float64, []float64) {
	n := float64(len(X))
	means := make([]float64, width)
	scales := make([]float64, width)
	for _, row := range X {
		for k, v := range row {
			means[k] += v
		}
	}
	for k := range means {
		means[k] /= n
	}
	for _, row := range X {
		for k, v := range row {
			d := v - means[k]
			scales[k] += d * d
		}
	}
	for k := range scales {
		scales[k] = math.Sqrt(scales[k] / n)
		if scales[k] == 0 {
			scales[k] = 1
		}
	}
	return means, scales
}

func (m *LogisticRegression) scale(x []float64) []float64 {
	z := make([]float64, len(x))
	for k, v := range x {
		z[k] = (v - m.Means[k]) / m.Scales[k]
	}
	return z
}

// Width returns the expected input length
func (m *LogisticRegression) Width() int {
	return len(m.Weights)
}

// PredictProba returns the probability of the positive class
func (m *LogisticRegression) PredictProba(x []float64) (float64, error) {
	if m.Weights == nil {
		return 0, ErrNotFitted
	}
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), len(m.Weights))
	}
	return sigmoid(m.Bias + dot(m.Weights, m.scale(x))), nil
}

// Save writes the model as JSON
func (m *LogisticRegression) Save(path string) error {
	if m.Weights == nil {
		return ErrNotFitted
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a model written by Save
func Load(path string) (*LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m LogisticRegression
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if m.Weights == nil {
		return nil, ErrNotFitted
	}
	if len(m.Means) != len(m.Weights) || len(m.Scales) != len(m.Weights) {
		return nil, fmt.Errorf("%w: corrupt model artifact", ErrDimensionMismatch)
	}
	return &m, nil
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
