package eos

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Convergence policy for the least-squares refinement. The gradient
// threshold sits above the finite-difference noise floor so a restart
// at an optimum terminates immediately instead of stalling.
const (
	fitGradientTolerance = 1e-8
	fitFunctionTolerance = 1e-15
	fitStallIterations   = 100
)

// Fit refines the stored parameters against (volumes, observations)
// pairs by nonlinear least squares on the form's closed-form function
// selected by target. Each iteration re-runs the solver seeded with
// the previous iteration's optimum, and the stored parameter vector is
// replaced wholesale by each result. maxIterations below 1 is treated
// as 1.
//
// The final parameter vector and its covariance estimate are returned;
// the covariance is not retained. When the Jacobian at the optimum is
// rank-deficient the covariance entries are +Inf, following the usual
// curve-fitting convention.
func (e *EOS) Fit(volumes, observations []float64, target Target, maxIterations int) ([]float64, *mat.Dense, error) {
	if len(volumes) != len(observations) {
		return nil, nil, fmt.Errorf("eos: %d volumes but %d observations", len(volumes), len(observations))
	}

	var model func(v float64, params []float64) float64
	switch target {
	case TargetFreeEnergy:
		model = e.form.FreeEnergy
		if err := e.checkEnergyParams(); err != nil {
			return nil, nil, err
		}
	case TargetPressure:
		model = e.form.Pressure
		if e.params == nil {
			return nil, nil, ErrParametersNotSet
		}
		if len(e.params) != e.form.NumParams() {
			return nil, nil, fmt.Errorf("eos: fitting %s pressure takes exactly %d parameters, have %d",
				e.form.Name(), e.form.NumParams(), len(e.params))
		}
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFitTarget, target)
	}

	if maxIterations < 1 {
		maxIterations = 1
	}
	if len(volumes) < len(e.params) {
		return nil, nil, fmt.Errorf("eos: %d data points cannot determine %d parameters", len(volumes), len(e.params))
	}

	popt := append([]float64(nil), e.params...)
	for i := 0; i < maxIterations; i++ {
		next, err := leastSquares(model, volumes, observations, popt)
		if err != nil {
			return nil, nil, err
		}
		popt = next
		e.params = append([]float64(nil), popt...)
	}

	cov := covariance(model, volumes, observations, popt)
	return append([]float64(nil), popt...), cov, nil
}

// leastSquares minimizes the residual sum of squares of model over the
// data, starting from p0. Gradients come from finite differences
// inside the solver.
func leastSquares(model func(float64, []float64) float64, xs, ys, p0 []float64) ([]float64, error) {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			return residualSumSquares(model, xs, ys, p)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: fitGradientTolerance,
		Converger: &optimize.FunctionConverge{
			Absolute:   fitFunctionTolerance,
			Iterations: fitStallIterations,
		},
	}

	result, err := optimize.Minimize(problem, append([]float64(nil), p0...), settings, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitDidNotConverge, err)
	}
	if result.Status == optimize.Failure || result.Status == optimize.IterationLimit {
		return nil, fmt.Errorf("%w: solver stopped with status %v", ErrFitDidNotConverge, result.Status)
	}
	return result.X, nil
}

func residualSumSquares(model func(float64, []float64) float64, xs, ys, p []float64) float64 {
	var rss float64
	for i, x := range xs {
		r := model(x, p) - ys[i]
		rss += r * r
	}
	return rss
}

// covariance estimates the parameter covariance at the optimum as
// s^2 (J^T J)^-1, with J the model Jacobian and s^2 the residual
// variance.
func covariance(model func(float64, []float64) float64, xs, ys, popt []float64) *mat.Dense {
	n, k := len(xs), len(popt)

	jac := mat.NewDense(n, k, nil)
	fd.Jacobian(jac, func(dst, p []float64) {
		for i, x := range xs {
			dst[i] = model(x, p)
		}
	}, popt, nil)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	cov := mat.NewDense(k, k, nil)
	if err := cov.Inverse(&jtj); err != nil || n <= k {
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				cov.Set(i, j, math.Inf(1))
			}
		}
		return cov
	}

	s2 := residualSumSquares(model, xs, ys, popt) / float64(n-k)
	cov.Scale(s2, cov)
	return cov
}
