package qha_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/crystallab/qha/eos"
	"github.com/crystallab/qha/qha"
	"github.com/crystallab/qha/statmech"
)

// Synthetic crystal in eV / A^3 units: static energies from a known
// third-order Birch-Murnaghan curve, Einstein-like phonons whose
// frequencies soften with volume (positive Grueneisen parameter).
const (
	electronVolt = 1.602176634e-19

	staticV0  = 17.0
	staticB0  = 0.6
	staticBp0 = 4.3
	staticF0  = -5.0

	grueneisen = 1.5
	baseFreq   = 4e13 // rad/s
)

func meshVolumes() []float64 {
	vs := make([]float64, 0, 9)
	for v := 15.0; v <= 19.01; v += 0.5 {
		vs = append(vs, v)
	}
	return vs
}

func syntheticMesh(withPhonons bool) qha.Mesh {
	volumes := meshVolumes()
	static := make([]float64, len(volumes))
	freqs := make([][][]float64, len(volumes))

	bm3 := eos.BirchMurnaghan3rd{}
	params := []float64{staticV0, staticB0, staticBp0, staticF0}

	for i, v := range volumes {
		static[i] = bm3.FreeEnergy(v, params)

		// Two q-points, three branches each.
		freqs[i] = make([][]float64, 2)
		for j := range freqs[i] {
			if !withPhonons {
				freqs[i][j] = []float64{0, 0, 0}
				continue
			}
			scale := math.Pow(staticV0/v, grueneisen)
			freqs[i][j] = []float64{
				baseFreq * scale,
				1.2 * baseFreq * scale,
				1.5 * baseFreq * scale,
			}
		}
	}

	return qha.Mesh{
		Volumes:        volumes,
		StaticEnergies: static,
		Frequencies:    freqs,
		Weights:        []float64{1, 1},
	}
}

func newCalculator(withPhonons bool) *qha.Calculator {
	c, err := qha.NewCalculator(syntheticMesh(withPhonons), eos.BirchMurnaghan3rd{})
	Expect(err).NotTo(HaveOccurred())
	c.EnergyUnit = electronVolt
	return c
}

var _ = Describe("Mesh", func() {
	It("rejects mismatched static energies", func() {
		m := syntheticMesh(true)
		m.StaticEnergies = m.StaticEnergies[:3]
		Expect(m.Validate()).To(HaveOccurred())
	})

	It("rejects mismatched q-point counts", func() {
		m := syntheticMesh(true)
		m.Frequencies[2] = m.Frequencies[2][:1]
		Expect(m.Validate()).To(HaveOccurred())
	})

	It("rejects an empty volume mesh", func() {
		Expect(qha.Mesh{}.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("Calculator", func() {
	Context("with all-zero frequencies", func() {
		var c *qha.Calculator

		BeforeEach(func() {
			c = newCalculator(false)
		})

		It("reduces the Helmholtz surface to the static energies", func() {
			f, err := c.HelmholtzEnergy(300)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(HaveLen(len(c.Mesh.Volumes)))
			for i := range f {
				Expect(f[i]).To(BeNumerically("~", c.Mesh.StaticEnergies[i], 1e-12))
			}
		})

		It("recovers the static equation of state", func() {
			eq, err := c.EquilibriumAt(300, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(eq.Volume).To(BeNumerically("~", staticV0, 0.05))
			Expect(eq.BulkModulus).To(BeNumerically("~", staticB0, 0.01))
			Expect(eq.FreeEnergy).To(BeNumerically("~", staticF0, 1e-3))
		})
	})

	Context("with volume-dependent phonons", func() {
		var c *qha.Calculator

		BeforeEach(func() {
			c = newCalculator(true)
		})

		It("matches statmech on a single-mode mesh", func() {
			w := c.Mesh.Frequencies[0][0][0]
			single, err := qha.NewCalculator(qha.Mesh{
				Volumes:        []float64{15.0},
				StaticEnergies: []float64{0},
				Frequencies:    [][][]float64{{{w}}},
				Weights:        []float64{1},
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			single.EnergyUnit = electronVolt

			got, err := single.VibrationalFreeEnergy(300)
			Expect(err).NotTo(HaveOccurred())

			want, err := statmech.FreeEnergy(300, w)
			Expect(err).NotTo(HaveOccurred())
			Expect(got[0]).To(BeNumerically("~", want/electronVolt, 1e-12))
		})

		It("lowers the free energy as temperature rises", func() {
			low, err := c.HelmholtzEnergy(300)
			Expect(err).NotTo(HaveOccurred())
			high, err := c.HelmholtzEnergy(800)
			Expect(err).NotTo(HaveOccurred())
			for i := range low {
				Expect(high[i]).To(BeNumerically("<", low[i]))
			}
		})

		It("expands with temperature", func() {
			temps := []float64{100, 200, 300, 400, 500, 600, 700, 800}
			curve, err := c.EquilibriumCurve(temps, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(curve).To(HaveLen(len(temps)))

			volumes := make([]float64, len(curve))
			for i, eq := range curve {
				Expect(eq.Temperature).To(Equal(temps[i]))
				Expect(eq.Volume).To(BeNumerically(">", 15.0))
				Expect(eq.Volume).To(BeNumerically("<", 19.0))
				Expect(eq.BulkModulus).To(BeNumerically(">", 0))
				volumes[i] = eq.Volume
			}
			for i := 1; i < len(volumes); i++ {
				Expect(volumes[i]).To(BeNumerically(">", volumes[i-1]))
			}

			alpha, err := qha.ThermalExpansion(temps, volumes)
			Expect(err).NotTo(HaveOccurred())
			for _, a := range alpha {
				Expect(a).To(BeNumerically(">", 0))
			}
		})

		It("accumulates internal energy and entropy with temperature", func() {
			uLow, err := c.InternalEnergy(300)
			Expect(err).NotTo(HaveOccurred())
			uHigh, err := c.InternalEnergy(800)
			Expect(err).NotTo(HaveOccurred())
			for i := range uLow {
				Expect(uHigh[i]).To(BeNumerically(">", uLow[i]))
			}

			s, err := c.Entropy(300)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range s {
				Expect(v).To(BeNumerically(">", 0))
			}
		})

		It("keeps the specific heat below the classical limit", func() {
			classical := 3 * statmech.Boltzmann() / electronVolt // three branches

			cvLow, err := c.SpecificHeat(100)
			Expect(err).NotTo(HaveOccurred())
			cvHigh, err := c.SpecificHeat(800)
			Expect(err).NotTo(HaveOccurred())
			for i := range cvLow {
				Expect(cvLow[i]).To(BeNumerically(">", 0))
				Expect(cvHigh[i]).To(BeNumerically(">", cvLow[i]))
				Expect(cvHigh[i]).To(BeNumerically("<", classical))
			}
		})
	})

	Context("construction", func() {
		It("rejects an invalid mesh", func() {
			_, err := qha.NewCalculator(qha.Mesh{}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("defaults to the third-order Birch-Murnaghan form", func() {
			c, err := qha.NewCalculator(syntheticMesh(true), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Form.Name()).To(Equal(eos.BirchMurnaghan3rd{}.Name()))
		})
	})
})

var _ = Describe("ThermalExpansion", func() {
	It("differentiates an exponential volume curve", func() {
		// V(T) = V0 exp(aT) has constant alpha = a.
		const a = 3e-5
		temps := []float64{200, 300, 400, 500, 600}
		vols := make([]float64, len(temps))
		for i, t := range temps {
			vols[i] = 17.0 * math.Exp(a*t)
		}

		alpha, err := qha.ThermalExpansion(temps, vols)
		Expect(err).NotTo(HaveOccurred())
		for _, got := range alpha {
			Expect(got).To(BeNumerically("~", a, 1e-7))
		}
	})

	It("rejects mismatched or short inputs", func() {
		_, err := qha.ThermalExpansion([]float64{1, 2}, []float64{1})
		Expect(err).To(HaveOccurred())
		_, err = qha.ThermalExpansion([]float64{1}, []float64{1})
		Expect(err).To(HaveOccurred())
	})
})
