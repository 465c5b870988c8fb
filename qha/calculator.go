// Package qha computes quasi-harmonic thermodynamic properties of a
// crystal: given static energies and phonon frequencies on a volume
// mesh, it builds the Helmholtz free-energy surface F(T, V), fits an
// equation of state to it at each temperature, and derives equilibrium
// volume, bulk modulus and thermal expansion as functions of
// temperature.
package qha

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/crystallab/qha/eos"
	"github.com/crystallab/qha/sampling"
	"github.com/crystallab/qha/statmech"
)

// Mesh is the volume-resolved phonon input of a QHA calculation.
// Frequencies is indexed [volume][q-point][branch], in SI angular
// frequency. StaticEnergies and the volumes share one consistent unit
// system chosen by the caller; see [Calculator.EnergyUnit].
type Mesh struct {
	Volumes        []float64
	StaticEnergies []float64
	Frequencies    [][][]float64
	Weights        []float64
}

// Validate checks the mesh arrays for consistent shapes. Frequency
// signs and weight signs are validated by the statmech and sampling
// packages at evaluation time.
func (m Mesh) Validate() error {
	if len(m.Volumes) == 0 {
		return errors.New("qha: empty volume mesh")
	}
	if len(m.StaticEnergies) != len(m.Volumes) {
		return fmt.Errorf("qha: %d static energies for %d volumes", len(m.StaticEnergies), len(m.Volumes))
	}
	if len(m.Frequencies) != len(m.Volumes) {
		return fmt.Errorf("qha: %d frequency grids for %d volumes", len(m.Frequencies), len(m.Volumes))
	}
	if len(m.Weights) == 0 {
		return errors.New("qha: no q-point weights")
	}
	for i, plane := range m.Frequencies {
		if len(plane) != len(m.Weights) {
			return fmt.Errorf("qha: volume %d has %d q-points, want %d", i, len(plane), len(m.Weights))
		}
	}
	return nil
}

// Calculator derives thermodynamic properties from one Mesh. Fields
// may be adjusted between calls; a Calculator is not safe for
// concurrent use.
type Calculator struct {
	Mesh Mesh
	// Form is the equation of state fitted to each isotherm.
	Form eos.Form
	// Guess optionally seeds the EOS fit (V0, B0, ... in mesh units).
	// When nil, a guess is estimated from the free-energy curve.
	Guess []float64
	// EnergyUnit converts statmech output (joules) into the unit of
	// StaticEnergies: joules per caller energy unit. 1 means the mesh
	// is in SI; 1.602176634e-19 means eV.
	EnergyUnit float64
}

// NewCalculator validates the mesh and returns a Calculator with the
// third-order Birch-Murnaghan form and SI energies as defaults.
func NewCalculator(mesh Mesh, form eos.Form) (*Calculator, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if form == nil {
		form = eos.BirchMurnaghan3rd{}
	}
	return &Calculator{Mesh: mesh, Form: form, EnergyUnit: 1}, nil
}

// sampled evaluates q for every mode at every volume and contracts
// over the Brillouin-zone weights, returning one value per mesh volume
// in the caller's energy unit.
func (c *Calculator) sampled(q statmech.Quantity, temperature float64) ([]float64, error) {
	vals := make([][][]float64, len(c.Mesh.Frequencies))
	for i, plane := range c.Mesh.Frequencies {
		vals[i] = make([][]float64, len(plane))
		for j, branches := range plane {
			row, err := statmech.Each(q, temperature, branches)
			if err != nil {
				return nil, err
			}
			vals[i][j] = row
		}
	}
	out, err := sampling.Sample(c.Mesh.Weights, vals)
	if err != nil {
		return nil, err
	}
	floats.Scale(1/c.EnergyUnit, out)
	return out, nil
}

// VibrationalFreeEnergy returns the phonon Helmholtz free energy per
// mesh volume at the given temperature, in the caller's energy unit.
func (c *Calculator) VibrationalFreeEnergy(temperature float64) ([]float64, error) {
	return c.sampled(statmech.FreeEnergy, temperature)
}

// HelmholtzEnergy returns the total free energy F(T, V) per mesh
// volume: the static energy plus the Brillouin-zone sampled
// vibrational term.
func (c *Calculator) HelmholtzEnergy(temperature float64) ([]float64, error) {
	f, err := c.VibrationalFreeEnergy(temperature)
	if err != nil {
		return nil, err
	}
	floats.Add(f, c.Mesh.StaticEnergies)
	return f, nil
}

// InternalEnergy returns the total internal energy per mesh volume,
// static plus vibrational.
func (c *Calculator) InternalEnergy(temperature float64) ([]float64, error) {
	u, err := c.sampled(statmech.InternalEnergy, temperature)
	if err != nil {
		return nil, err
	}
	floats.Add(u, c.Mesh.StaticEnergies)
	return u, nil
}

// Entropy returns the vibrational entropy per mesh volume, in the
// caller's energy unit per kelvin. All frequencies must be strictly
// positive: zero-frequency modes yield NaN here, as in
// [statmech.Entropy].
func (c *Calculator) Entropy(temperature float64) ([]float64, error) {
	return c.sampled(statmech.Entropy, temperature)
}

// SpecificHeat returns the vibrational specific heat at constant
// volume per mesh volume, in the caller's energy unit per kelvin.
func (c *Calculator) SpecificHeat(temperature float64) ([]float64, error) {
	return c.sampled(statmech.SpecificHeat, temperature)
}

// Equilibrium is the fitted state of the crystal at one temperature.
type Equilibrium struct {
	Temperature float64
	// Volume is the fitted equilibrium volume V0(T).
	Volume float64
	// BulkModulus is the fitted B0(T) in the caller's pressure unit.
	BulkModulus float64
	// FreeEnergy is the fitted free energy at Volume.
	FreeEnergy float64
	// Params is the full fitted parameter vector of the form.
	Params []float64
}

// EquilibriumAt fits the calculator's form to the F(T, V) isotherm and
// returns the equilibrium state at that temperature.
func (c *Calculator) EquilibriumAt(temperature float64, maxIterations int) (Equilibrium, error) {
	f, err := c.HelmholtzEnergy(temperature)
	if err != nil {
		return Equilibrium{}, err
	}

	guess := append([]float64(nil), c.Guess...)
	if guess == nil {
		guess = initialGuess(c.Form, c.Mesh.Volumes, f)
	}
	if len(guess) == c.Form.NumParams() {
		guess = append(guess, f[floats.MinIdx(f)])
	}

	model := eos.New(c.Form, guess...)
	popt, _, err := model.Fit(c.Mesh.Volumes, f, eos.TargetFreeEnergy, maxIterations)
	if err != nil {
		return Equilibrium{}, fmt.Errorf("qha: fit at T=%g K: %w", temperature, err)
	}

	f0, err := model.FreeEnergyAt(popt[0])
	if err != nil {
		return Equilibrium{}, err
	}
	return Equilibrium{
		Temperature: temperature,
		Volume:      popt[0],
		BulkModulus: popt[1],
		FreeEnergy:  f0,
		Params:      popt,
	}, nil
}

// EquilibriumCurve fits every temperature in turn.
func (c *Calculator) EquilibriumCurve(temperatures []float64, maxIterations int) ([]Equilibrium, error) {
	out := make([]Equilibrium, len(temperatures))
	for i, t := range temperatures {
		eq, err := c.EquilibriumAt(t, maxIterations)
		if err != nil {
			return nil, err
		}
		out[i] = eq
	}
	return out, nil
}

// ThermalExpansion returns the volumetric thermal expansion
// coefficient alpha(T) = (1/V) dV/dT from an equilibrium-volume curve,
// using central differences in the interior and one-sided differences
// at the ends.
func ThermalExpansion(temperatures, volumes []float64) ([]float64, error) {
	if len(temperatures) != len(volumes) {
		return nil, fmt.Errorf("qha: %d temperatures but %d volumes", len(temperatures), len(volumes))
	}
	if len(temperatures) < 2 {
		return nil, errors.New("qha: thermal expansion needs at least two temperatures")
	}
	alpha := make([]float64, len(volumes))
	for i := range volumes {
		var dv, dt float64
		switch i {
		case 0:
			dv, dt = volumes[1]-volumes[0], temperatures[1]-temperatures[0]
		case len(volumes) - 1:
			dv, dt = volumes[i]-volumes[i-1], temperatures[i]-temperatures[i-1]
		default:
			dv, dt = volumes[i+1]-volumes[i-1], temperatures[i+1]-temperatures[i-1]
		}
		alpha[i] = dv / dt / volumes[i]
	}
	return alpha, nil
}

// initialGuess estimates EOS parameters from an isotherm: V0 from the
// discrete minimum, B0 from the local curvature (B = V F''), B0' at
// the universal value 4 and B0'' at the -B0'/B0 approximation.
func initialGuess(form eos.Form, volumes, f []float64) []float64 {
	i := floats.MinIdx(f)
	v0 := volumes[i]

	var b0 float64
	if i > 0 && i < len(f)-1 {
		h := (volumes[i+1] - volumes[i-1]) / 2
		b0 = v0 * (f[i-1] - 2*f[i] + f[i+1]) / (h * h)
	}
	if b0 <= 0 {
		span := volumes[len(volumes)-1] - volumes[0]
		b0 = 8 * (floats.Max(f) - floats.Min(f)) * v0 / (span * span)
	}

	guess := []float64{v0, b0}
	if form.NumParams() >= 3 {
		guess = append(guess, 4)
	}
	if form.NumParams() >= 4 {
		guess = append(guess, -4/b0)
	}
	return guess
}
