package eos

import "math"

// Form is one closed-form equation of state: a free-energy function of
// volume and a pressure function that is its analytic volume
// derivative. Forms are stateless; parameters arrive as a slice laid
// out V0, B0, B0' and, for the fourth-order model, B0''. The
// free-energy function accepts one trailing parameter beyond
// NumParams, the reference free energy F0, defaulting to zero when
// absent. Pressure functions never read F0.
type Form interface {
	Name() string
	// NumParams is the number of physical parameters, excluding the
	// optional reference free energy.
	NumParams() int
	FreeEnergy(v float64, params []float64) float64
	Pressure(v float64, params []float64) float64
}

func refEnergy(n int, params []float64) float64 {
	if len(params) > n {
		return params[n]
	}
	return 0
}

// Birch is the original Birch (1947) equation of state.
type Birch struct{}

func (Birch) Name() string   { return "birch" }
func (Birch) NumParams() int { return 3 }

func (Birch) FreeEnergy(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	x := math.Pow(v0/v, 2.0/3.0) - 1
	xi := 9.0 / 16.0 * b0 * v0 * x * x
	return refEnergy(3, p) + 2*xi + (bp0-4)*xi*x
}

func (Birch) Pressure(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	x := v0 / v
	xi := math.Pow(x, 2.0/3.0) - 1
	return 3.0 / 8.0 * b0 * math.Pow(x, 5.0/3.0) * xi * (4 + 3*(bp0-4)*xi)
}

// Murnaghan is the Murnaghan (1944) equation of state.
type Murnaghan struct{}

func (Murnaghan) Name() string   { return "murnaghan" }
func (Murnaghan) NumParams() int { return 3 }

func (Murnaghan) FreeEnergy(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	x := bp0 - 1
	y := math.Pow(v0/v, bp0)
	return refEnergy(3, p) + b0/bp0*v*(y/x+1) - v0*b0/x
}

func (Murnaghan) Pressure(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	return b0 / bp0 * (math.Pow(v0/v, bp0) - 1)
}

// BirchMurnaghan2nd is the second-order Birch-Murnaghan equation of
// state, with B0' fixed at 4.
type BirchMurnaghan2nd struct{}

func (BirchMurnaghan2nd) Name() string   { return "birch-murnaghan-2nd" }
func (BirchMurnaghan2nd) NumParams() int { return 2 }

func (BirchMurnaghan2nd) FreeEnergy(v float64, p []float64) float64 {
	v0, b0 := p[0], p[1]
	f := eulerianStrain(v0, v)
	return refEnergy(2, p) + 9.0/2.0*b0*v0*f*f
}

func (BirchMurnaghan2nd) Pressure(v float64, p []float64) float64 {
	v0, b0 := p[0], p[1]
	f := eulerianStrain(v0, v)
	return 3 * b0 * f * math.Pow(1+2*f, 2.5)
}

// BirchMurnaghan3rd is the third-order Birch-Murnaghan equation of
// state.
type BirchMurnaghan3rd struct{}

func (BirchMurnaghan3rd) Name() string   { return "birch-murnaghan-3rd" }
func (BirchMurnaghan3rd) NumParams() int { return 3 }

func (BirchMurnaghan3rd) FreeEnergy(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	eta := math.Cbrt(v0 / v)
	xi := eta*eta - 1
	return refEnergy(3, p) + 9.0/16.0*b0*v0*xi*xi*(6+bp0*xi-4*eta*eta)
}

func (BirchMurnaghan3rd) Pressure(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	eta := math.Cbrt(v0 / v)
	eta2 := eta * eta
	return 3.0 / 2.0 * b0 * (math.Pow(eta, 7) - math.Pow(eta, 5)) * (1 + 3.0/4.0*(bp0-4)*(eta2-1))
}

// BirchMurnaghan4th is the fourth-order Birch-Murnaghan equation of
// state. Its parameter slice carries V0, B0, B0', B0''.
type BirchMurnaghan4th struct{}

func (BirchMurnaghan4th) Name() string   { return "birch-murnaghan-4th" }
func (BirchMurnaghan4th) NumParams() int { return 4 }

func (BirchMurnaghan4th) FreeEnergy(v float64, p []float64) float64 {
	v0, b0, bp0, bpp0 := p[0], p[1], p[2], p[3]
	f := eulerianStrain(v0, v)
	h := b0*bpp0 + bp0*bp0
	return refEnergy(4, p) + 3.0/8.0*v0*b0*f*f*((9*h-63*bp0+143)*f*f+12*(bp0-4)*f+12)
}

func (BirchMurnaghan4th) Pressure(v float64, p []float64) float64 {
	v0, b0, bp0, bpp0 := p[0], p[1], p[2], p[3]
	f := eulerianStrain(v0, v)
	h := b0*bpp0 + bp0*bp0
	return 1.0 / 2.0 * b0 * f * math.Pow(2*f+1, 2.5) * ((9*h-63*bp0+143)*f*f+9*(bp0-4)*f+6)
}

// Vinet is the Vinet (1987) equation of state, with an exponential
// compressibility form.
type Vinet struct{}

func (Vinet) Name() string   { return "vinet" }
func (Vinet) NumParams() int { return 3 }

func (Vinet) FreeEnergy(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	x := math.Cbrt(v / v0)
	xi := 3.0 / 2.0 * (bp0 - 1)
	return refEnergy(3, p) + 9*b0*v0/(xi*xi)*(1+(xi*(1-x)-1)*math.Exp(xi*(1-x)))
}

func (Vinet) Pressure(v float64, p []float64) float64 {
	v0, b0, bp0 := p[0], p[1], p[2]
	x := math.Cbrt(v / v0)
	xi := 3.0 / 2.0 * (bp0 - 1)
	return 3 * b0 / (x * x) * (1 - x) * math.Exp(xi*(1-x))
}

// eulerianStrain is the finite strain variable f of the
// Birch-Murnaghan family.
func eulerianStrain(v0, v float64) float64 {
	return (math.Pow(v0/v, 2.0/3.0) - 1) / 2
}

// Forms lists every equation of state this package implements.
func Forms() []Form {
	return []Form{
		Birch{},
		Murnaghan{},
		BirchMurnaghan2nd{},
		BirchMurnaghan3rd{},
		BirchMurnaghan4th{},
		Vinet{},
	}
}
