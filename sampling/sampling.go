// Package sampling contracts mode-resolved quantities over a weighted
// Brillouin-zone q-point mesh.
package sampling

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNegativeWeight reports a q-point weight below zero.
var ErrNegativeWeight = errors.New("sampling: negative weight")

// Sample sums quantity over its last axis (the mode branches) and
// contracts the result with the q-point weights, normalized to sum to
// one. quantity is indexed [leading][q-point][branch]; the output has
// one entry per leading index. Every weight is validated before any
// computation.
func Sample(weights []float64, quantity [][][]float64) ([]float64, error) {
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: %g", ErrNegativeWeight, w)
		}
	}
	if len(weights) == 0 {
		return nil, errors.New("sampling: no weights")
	}
	total := floats.Sum(weights)
	if total == 0 {
		return nil, errors.New("sampling: weights sum to zero")
	}
	scaled := append([]float64(nil), weights...)
	floats.Scale(1/total, scaled)

	if len(quantity) == 0 {
		return []float64{}, nil
	}
	summed := mat.NewDense(len(quantity), len(weights), nil)
	for i, plane := range quantity {
		if len(plane) != len(weights) {
			return nil, fmt.Errorf("sampling: quantity row %d has %d q-points, want %d", i, len(plane), len(weights))
		}
		for j, branches := range plane {
			summed.Set(i, j, floats.Sum(branches))
		}
	}

	var out mat.VecDense
	out.MulVec(summed, mat.NewVecDense(len(scaled), scaled))

	result := make([]float64, len(quantity))
	for i := range result {
		result[i] = out.AtVec(i)
	}
	return result, nil
}
