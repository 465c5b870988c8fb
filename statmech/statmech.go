// Package statmech evaluates thermodynamic quantities of independent
// quantum harmonic oscillators: Bose-Einstein occupation, partition
// function, Helmholtz free energy, internal energy, entropy and
// volumetric specific heat.
//
// Every function validates the frequency before computing; a negative
// frequency returns [ErrInvalidFrequency]. A zero frequency is a valid
// boundary with explicit closed-form values for the partition function,
// free energy, internal energy and specific heat. Occupation and entropy
// carry no such guard, so NaN and Inf propagate there the way the
// formulas produce them.
package statmech

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/unit/constant"
)

// Physical constants in SI units.
var (
	kB   = float64(constant.Boltzmann)
	hbar = float64(constant.Planck) / (2 * math.Pi)
)

// Boltzmann returns the Boltzmann constant in J/K.
func Boltzmann() float64 { return kB }

// ReducedPlanck returns the reduced Planck constant in J*s.
func ReducedPlanck() float64 { return hbar }

// ErrInvalidFrequency reports a negative oscillator frequency.
var ErrInvalidFrequency = errors.New("statmech: negative frequency")

func validateFrequency(frequency float64) error {
	if frequency < 0 {
		return fmt.Errorf("%w: %g rad/s", ErrInvalidFrequency, frequency)
	}
	return nil
}

// BoseEinstein returns the thermal-equilibrium occupation of an
// oscillator mode. There is no zero-frequency or zero-temperature
// guard: the occupation diverges as the frequency approaches zero.
func BoseEinstein(temperature, frequency float64) (float64, error) {
	if err := validateFrequency(frequency); err != nil {
		return 0, err
	}
	return 1 / (math.Exp(hbar*frequency/(kB*temperature)) - 1), nil
}

// PartitionFunction returns the single-oscillator partition function.
// A zero-frequency mode contributes exactly 1.
func PartitionFunction(temperature, frequency float64) (float64, error) {
	if err := validateFrequency(frequency); err != nil {
		return 0, err
	}
	if frequency == 0 {
		return 1, nil
	}
	x := hbar * frequency / (kB * temperature)
	return math.Exp(x/2) / (math.Exp(x) - 1), nil
}

// FreeEnergy returns the Helmholtz free energy of one oscillator in
// joules. A zero-frequency mode contributes nothing.
func FreeEnergy(temperature, frequency float64) (float64, error) {
	if err := validateFrequency(frequency); err != nil {
		return 0, err
	}
	if frequency == 0 {
		return 0, nil
	}
	hw := hbar * frequency
	kt := kB * temperature
	return hw/2 + kt*math.Log(1-math.Exp(-hw/kt)), nil
}

// InternalEnergy returns the internal energy of one oscillator in
// joules. A zero-frequency mode contributes the classical kT.
func InternalEnergy(temperature, frequency float64) (float64, error) {
	if err := validateFrequency(frequency); err != nil {
		return 0, err
	}
	if frequency == 0 {
		return kB * temperature, nil
	}
	hw := hbar * frequency
	return hw / 2 / math.Tanh(hw/(2*kB*temperature)), nil
}

// Entropy returns the entropy of one oscillator in J/K. Like
// [BoseEinstein] it has no zero-frequency guard, so a zero frequency
// yields NaN.
func Entropy(temperature, frequency float64) (float64, error) {
	if err := validateFrequency(frequency); err != nil {
		return 0, err
	}
	n, err := BoseEinstein(temperature, frequency)
	if err != nil {
		return 0, err
	}
	return kB * ((1+n)*math.Log(1+n) - n*math.Log(n)), nil
}

// SpecificHeat returns the volumetric specific heat of one oscillator
// in J/K. A zero-frequency mode contributes the classical value kB.
func SpecificHeat(temperature, frequency float64) (float64, error) {
	if err := validateFrequency(frequency); err != nil {
		return 0, err
	}
	if frequency == 0 {
		return kB, nil
	}
	hw := hbar * frequency
	kt := 2 * kB * temperature
	s := hw / math.Sinh(hw/kt) / kt
	return kB * s * s, nil
}

// Quantity is any single-oscillator thermodynamic function of
// temperature and frequency.
type Quantity func(temperature, frequency float64) (float64, error)

// Each evaluates q element-wise over a frequency slice at one
// temperature. All frequencies are validated before any value is
// computed.
func Each(q Quantity, temperature float64, frequencies []float64) ([]float64, error) {
	for _, f := range frequencies {
		if err := validateFrequency(f); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(frequencies))
	for i, f := range frequencies {
		v, err := q(temperature, f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Grid evaluates q over every temperature-frequency pair, temperatures
// down the rows and frequencies across the columns.
func Grid(q Quantity, temperatures, frequencies []float64) (*mat.Dense, error) {
	for _, f := range frequencies {
		if err := validateFrequency(f); err != nil {
			return nil, err
		}
	}
	if len(temperatures) == 0 || len(frequencies) == 0 {
		return nil, errors.New("statmech: empty grid axis")
	}
	out := mat.NewDense(len(temperatures), len(frequencies), nil)
	for i, t := range temperatures {
		for j, f := range frequencies {
			v, err := q(t, f)
			if err != nil {
				return nil, err
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}
