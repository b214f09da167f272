package combustion

import (
	"fmt"
	"math"

	"allam/fluid"
)

// Species is one entry of a gas stream.
type Species struct {
	MolarMass float64 `json:"mol_mass"` // kg/mol
	Mole      float64 `json:"mol"`
	Mass      float64 `json:"mass"`
}

// Products is the combustor exit stream. CO2 counts both reacted and
// recirculated carbon dioxide, CO2Recyc is the recirculated part of it, so
// CO2 and H2O make up the whole stream.
type Products struct {
	CO2      Species `json:"CO2"`
	H2O      Species `json:"H2O"`
	CO2Recyc Species `json:"CO2_recyc"`
}

// Inlet is the combustor feed: fuel, oxidant and diluent CO2.
type Inlet struct {
	CH4 Species `json:"CH4"`
	O2  Species `json:"O2"`
	CO2 Species `json:"CO2"`
}

// Volumes per unit volume of fuel.
type Volumes struct {
	O2, CH4            float64
	H2O, CO2, CO2Recyc float64
	Gas                float64
}

type Composition struct {
	Ratio     float64
	Volumes   Volumes
	MolarMass float64 // products, kg/mol
	Products  Products
	Inlet     Inlet
}

// stoichiometry of CH4 + 2 O2 -> CO2 + 2 H2O, by volume
const (
	volumeO2      = 2
	volumeCH4     = 1
	volumeH2O     = 2
	volumeCO2Norm = 1
	volumeGasNorm = volumeH2O + volumeCO2Norm
)

type molarMasses struct {
	co2, h2o, ch4, o2 float64
}

func loadMolarMasses() (molarMasses, error) {
	var m molarMasses
	for _, e := range []struct {
		s   fluid.Substance
		dst *float64
	}{
		{fluid.CO2, &m.co2},
		{fluid.Water, &m.h2o},
		{fluid.Methane, &m.ch4},
		{fluid.Oxygen, &m.o2},
	} {
		v, err := fluid.MolarMass(e.s)
		if err != nil {
			return m, err
		}
		*e.dst = v
	}
	return m, nil
}

// Composition returns the product and inlet streams for recirculation ratio
// k, the recirculated CO2 volume over the undiluted product volume.
func (m *Model) Composition(k float64) (Composition, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		return Composition{}, fmt.Errorf("%w: recirculation ratio %v", ErrInvalidComposition, k)
	}

	v := Volumes{
		O2:       volumeO2,
		CH4:      volumeCH4,
		H2O:      volumeH2O,
		CO2Recyc: volumeGasNorm * k,
		Gas:      volumeGasNorm * (k + 1),
	}
	v.CO2 = v.Gas - v.H2O

	mm := m.molar
	c := Composition{Ratio: k, Volumes: v}

	p := &c.Products
	p.CO2 = Species{MolarMass: mm.co2, Mole: v.CO2 / v.Gas}
	p.CO2Recyc = Species{MolarMass: mm.co2, Mole: v.CO2Recyc / v.Gas}
	p.H2O = Species{MolarMass: mm.h2o, Mole: v.H2O / v.Gas}
	c.MolarMass = p.CO2.Mole*mm.co2 + p.H2O.Mole*mm.h2o
	for _, s := range []*Species{&p.CO2, &p.CO2Recyc, &p.H2O} {
		s.Mass = s.Mole * s.MolarMass / c.MolarMass
	}

	in := &c.Inlet
	vin := v.O2 + v.CH4 + v.CO2Recyc
	in.O2 = Species{MolarMass: mm.o2, Mole: v.O2 / vin}
	in.CH4 = Species{MolarMass: mm.ch4, Mole: v.CH4 / vin}
	in.CO2 = Species{MolarMass: mm.co2, Mole: v.CO2Recyc / vin}
	min := in.O2.Mole*mm.o2 + in.CH4.Mole*mm.ch4 + in.CO2.Mole*mm.co2
	for _, s := range []*Species{&in.O2, &in.CH4, &in.CO2} {
		s.Mass = s.Mole * s.MolarMass / min
	}
	return c, nil
}
