package model

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable: wins have large x0, losses small, x1 is constant noise
func separable() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(10 + i), 3})
		y = append(y, 1)
		X = append(X, []float64{float64(-10 - i), 3})
		y = append(y, 0)
	}
	return X, y
}

func TestDefaultTrainingOptions(t *testing.T) {
	opts := DefaultTrainingOptions()

	assert.Equal(t, 1000, opts.MaxIter)
	assert.Equal(t, 0.5, opts.LearningRate)
	assert.Equal(t, 0.0001, opts.L2)
	assert.Equal(t, 0.000001, opts.Tolerance)
}

func TestFitSeparable(t *testing.T) {
	X, y := separable()

	m, err := Fit(X, y, TrainingOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1000, m.Options.MaxIter)
	assert.LessOrEqual(t, m.Iterations, 1000)

	pWin, err := m.PredictProba([]float64{15, 3})
	require.NoError(t, err)
	pLose, err := m.PredictProba([]float64{-15, 3})
	require.NoError(t, err)

	assert.Greater(t, pWin, 0.9)
	assert.Less(t, pLose, 0.1)

	metrics, err := m.Evaluate(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, metrics.Accuracy)
	assert.Equal(t, 40, metrics.Samples)
}

func TestFitConstantColumnScale(t *testing.T) {
	X, y := separable()

	m, err := Fit(X, y, TrainingOptions{MaxIter: 10})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Scales[1])
	assert.Equal(t, 3.0, m.Means[1])
	assert.Equal(t, 10, m.Iterations)
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
		want error
	}{
		{"empty", nil, nil, ErrEmptyDataset},
		{"label count", [][]float64{{1}, {2}}, []float64{1}, ErrDimensionMismatch},
		{"ragged", [][]float64{{1}, {2, 3}}, []float64{1, 0}, ErrDimensionMismatch},
		{"single class", [][]float64{{1}, {2}}, []float64{1, 1}, ErrSingleClass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.X, tt.y, TrainingOptions{})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPredictProbaErrors(t *testing.T) {
	_, err := (&LogisticRegression{}).PredictProba([]float64{1})
	assert.True(t, errors.Is(err, ErrNotFitted))

	m := &LogisticRegression{Weights: []float64{1}, Means: []float64{0}, Scales: []float64{1}}
	_, err = m.PredictProba([]float64{1, 2})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestEvaluateCoinFlip(t *testing.T) {
	m := &LogisticRegression{Weights: []float64{0}, Means: []float64{0}, Scales: []float64{1}}

	metrics, err := m.Evaluate([][]float64{{1}, {2}}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, metrics.Accuracy)
	assert.InDelta(t, math.Ln2, metrics.LogLoss, 1e-12)
	assert.InDelta(t, 0.25, metrics.Brier, 1e-12)
}

func TestSigmoidClamp(t *testing.T) {
	assert.Equal(t, 1.0, sigmoid(25))
	assert.Equal(t, 0.0, sigmoid(-25))
	assert.Equal(t, 0.5, sigmoid(0))
}

func TestSaveLoad(t *testing.T) {
	X, y := separable()
	m, err := Fit(X, y, TrainingOptions{MaxIter: 50})
	require.NoError(t, err)
	m.Version = "test-version"
	m.FeatureNames = []string{"a", "b"}

	path := filepath.Join(t.TempDir(), "ipl_model.json")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	want, _ := m.PredictProba([]float64{1, 3})
	got, err := loaded.PredictProba([]float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSplitStratified(t *testing.T) {
	y := make([]float64, 100)
	for i := 0; i < 30; i++ {
		y[i] = 1
	}

	train, test, err := Split(y, 0.2, 42, true)
	require.NoError(t, err)
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)

	positives := 0
	for _, i := range test {
		positives += int(y[i])
	}
	assert.Equal(t, 6, positives)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i], "index %d assigned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 100)
}

func TestSplitDeterministic(t *testing.T) {
	y := []float64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}

	train1, test1, err := Split(y, 0.2, 42, true)
	require.NoError(t, err)
	train2, test2, err := Split(y, 0.2, 42, true)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestSplitUnstratified(t *testing.T) {
	y := make([]float64, 10)

	train, test, err := Split(y, 0.3, 7, false)
	require.NoError(t, err)
	assert.Len(t, test, 3)
	assert.Len(t, train, 7)
}

func TestSplitBadFraction(t *testing.T) {
	for _, frac := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := Split([]float64{0, 1}, frac, 42, true)
		assert.Error(t, err, "fraction %v", frac)
	}
}

func TestSubset(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{0, 1, 0}

	xs, ys := Subset(X, y, []int{2, 0})
	assert.Equal(t, [][]float64{{3}, {1}}, xs)
	assert.Equal(t, []float64{0, 0}, ys)
}
