package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Split partitions row indices into train and test sets. With stratify set,
// each class contributes testFraction of its rows to the test set.
// The result is deterministic for a given seed; both index lists are sorted.
func Split(y []float64, testFraction float64, seed int64, stratify bool) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}
	if len(y) == 0 {
		return nil, nil, ErrEmptyDataset
	}

	rng := rand.New(rand.NewSource(seed))

	var groups [][]int
	if stratify {
		byClass := map[float64][]int{}
		var classes []float64
		for i, label := range y {
			if _, ok := byClass[label]; !ok {
				classes = append(classes, label)
			}
			byClass[label] = append(byClass[label], i)
		}
		sort.Float64s(classes)
		for _, c := range classes {
			groups = append(groups, byClass[c])
		}
	} else {
		all := make([]int, len(y))
		for i := range all {
			all[i] = i
		}
		groups = [][]int{all}
	}

	for _, idx := range groups {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(math.Round(testFraction * float64(len(idx))))
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// Subset selects rows of X and y by index
func Subset(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, k := range idx {
		xs[i] = X[k]
		ys[i] = y[k]
	}
	return xs, ys
}
