package model

import (
	"fmt"
	"math"
)

// Metrics summarises classifier quality on a labelled set
type Metrics struct {
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	LogLoss  float64 `json:"log_loss" yaml:"log_loss"`
	Brier    float64 `json:"brier" yaml:"brier"`
	Samples  int     `json:"samples" yaml:"samples"`
}

// probabilities are clipped away from 0 and 1 before taking logs
const logLossEpsilon = 1e-15

// Evaluate scores the model on X and y. A probability of 0.5 or more predicts a win.
func (m *LogisticRegression) Evaluate(X [][]float64, y []float64) (Metrics, error) {
	if len(X) == 0 {
		return Metrics{}, ErrEmptyDataset
	}
	if len(X) != len(y) {
		return Metrics{}, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(X), len(y))
	}

	var correct, logLoss, brier float64
	for i, x := range X {
		p, err := m.PredictProba(x)
		if err != nil {
			return Metrics{}, err
		}

		predicted := 0.0
		if p >= 0.5 {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}

		clipped := math.Min(math.Max(p, logLossEpsilon), 1-logLossEpsilon)
		logLoss -= y[i]*math.Log(clipped) + (1-y[i])*math.Log(1-clipped)
		brier += (p - y[i]) * (p - y[i])
	}

	n := float64(len(X))
	return Metrics{
		Accuracy: correct / n,
		LogLoss:  logLoss / n,
		Brier:    brier / n,
		Samples:  len(X),
	}, nil
}
