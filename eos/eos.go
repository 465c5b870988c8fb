// Package eos fits and evaluates equations of state of a crystalline
// solid. Six closed-form models share one protocol: an [EOS] value
// owns a mutable parameter vector, evaluates free energy and pressure
// at arbitrary volumes, and refines its parameters against
// volume-resolved data by nonlinear least squares.
//
// An EOS value is not safe for concurrent use; callers that share one
// across goroutines must synchronize around Fit and SetParams.
package eos

import (
	"errors"
	"fmt"
)

var (
	// ErrParametersNotSet reports evaluation or fitting on an EOS
	// whose parameter vector was never set.
	ErrParametersNotSet = errors.New("eos: parameters not set")
	// ErrUnknownFitTarget reports a fit target other than
	// TargetFreeEnergy or TargetPressure.
	ErrUnknownFitTarget = errors.New("eos: unknown fit target")
	// ErrFitDidNotConverge reports that the underlying solver failed
	// to converge.
	ErrFitDidNotConverge = errors.New("eos: fit did not converge")
)

// Target selects which closed-form function a fit refines against.
type Target string

const (
	TargetFreeEnergy Target = "f"
	TargetPressure   Target = "p"
)

// EOS couples a Form with a concrete parameter vector. The vector is
// laid out V0, B0, B0' [, B0''] [, F0]; the trailing reference free
// energy is optional and only meaningful for free-energy evaluation.
type EOS struct {
	form   Form
	params []float64
}

// New returns an EOS for the given form. The initial parameters may be
// omitted entirely, in which case they must be set (or fitted from an
// explicit guess via SetParams) before evaluation.
func New(form Form, initParams ...float64) *EOS {
	e := &EOS{form: form}
	if len(initParams) > 0 {
		e.params = append([]float64(nil), initParams...)
	}
	return e
}

// Form returns the equation-of-state form this instance evaluates.
func (e *EOS) Form() Form { return e.form }

// Params returns a copy of the stored parameter vector, or nil when no
// parameters are set.
func (e *EOS) Params() []float64 {
	if e.params == nil {
		return nil
	}
	return append([]float64(nil), e.params...)
}

// SetParams replaces the stored parameter vector wholesale.
func (e *EOS) SetParams(params ...float64) {
	e.params = append([]float64(nil), params...)
}

// FreeEnergyAt evaluates the form's free energy at volume v with the
// stored parameters.
func (e *EOS) FreeEnergyAt(v float64) (float64, error) {
	if err := e.checkEnergyParams(); err != nil {
		return 0, err
	}
	return e.form.FreeEnergy(v, e.params), nil
}

// PressureAt evaluates the form's pressure at volume v with the stored
// parameters. A trailing reference free energy, if present, is
// ignored.
func (e *EOS) PressureAt(v float64) (float64, error) {
	if err := e.checkPressureParams(); err != nil {
		return 0, err
	}
	return e.form.Pressure(v, e.params), nil
}

// FreeEnergyCurve evaluates the free energy at each volume.
func (e *EOS) FreeEnergyCurve(volumes []float64) ([]float64, error) {
	if err := e.checkEnergyParams(); err != nil {
		return nil, err
	}
	out := make([]float64, len(volumes))
	for i, v := range volumes {
		out[i] = e.form.FreeEnergy(v, e.params)
	}
	return out, nil
}

// PressureCurve evaluates the pressure at each volume.
func (e *EOS) PressureCurve(volumes []float64) ([]float64, error) {
	if err := e.checkPressureParams(); err != nil {
		return nil, err
	}
	out := make([]float64, len(volumes))
	for i, v := range volumes {
		out[i] = e.form.Pressure(v, e.params)
	}
	return out, nil
}

func (e *EOS) checkEnergyParams() error {
	if e.params == nil {
		return ErrParametersNotSet
	}
	n := e.form.NumParams()
	if len(e.params) != n && len(e.params) != n+1 {
		return fmt.Errorf("eos: %s free energy takes %d or %d parameters, have %d",
			e.form.Name(), n, n+1, len(e.params))
	}
	return nil
}

func (e *EOS) checkPressureParams() error {
	if e.params == nil {
		return ErrParametersNotSet
	}
	if len(e.params) < e.form.NumParams() {
		return fmt.Errorf("eos: %s pressure takes %d parameters, have %d",
			e.form.Name(), e.form.NumParams(), len(e.params))
	}
	return nil
}
