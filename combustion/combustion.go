// Package combustion models the oxy-fuel combustor of the cycle: flue-gas
// composition for a given CO2 recirculation ratio, the calorimetric flame
// temperature and the ratio that hits a target combustor exit temperature.
//
// Temperatures inside the model are in °C (the heat-capacity fits are
// referenced to 0 °C); exported solves take and return kelvin.
package combustion

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"allam/rootfind"
)

// ErrInvalidComposition is returned for non-physical composition parameters.
var ErrInvalidComposition = errors.New("invalid composition parameters")

const zeroCelsius = 273.15

const (
	flameGuess = 1000.0 // °C
	ratioGuess = 1.0
)

// Polynomial coefficients in ascending order.
type Polynomial []float64

func (p Polynomial) Eval(x float64) float64 {
	v := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		v = v*x + p[i]
	}
	return v
}

// mean volumetric heat capacity between 0 °C and t, J/(m³·K)
var (
	heatCapacityCO2 = Polynomial{1.63479959e+03, 9.75263813e-01, -5.45793612e-04, 1.83324681e-07, -2.67917924e-11}
	heatCapacityH2O = Polynomial{1.49735370e+03, 1.18320983e-01, 1.79154428e-04, -8.92543875e-08, 1.34614261e-11}
	heatCapacityO2  = Polynomial{1.30543577e+03, 1.74761949e-01, 6.42329236e-05, -8.82987243e-08, 2.28704857e-11}
)

type Model struct {
	Calorific          float64 // fuel lower heating value, J/m³
	OxidantTemperature float64 // °C

	CO2, H2O, O2 Polynomial

	finder rootfind.Finder
	molar  molarMasses
}

// New returns the methane/oxygen model. A nil finder selects the default.
func New(finder rootfind.Finder) (*Model, error) {
	if finder == nil {
		finder = rootfind.Default(rootfind.DefaultOptions())
	}
	mm, err := loadMolarMasses()
	if err != nil {
		return nil, err
	}
	return &Model{
		Calorific:          35.8e6,
		OxidantTemperature: 15,
		CO2:                heatCapacityCO2,
		H2O:                heatCapacityH2O,
		O2:                 heatCapacityO2,
		finder:             finder,
		molar:              mm,
	}, nil
}

func (m *Model) residual(t float64, v Volumes, tRecyc float64) float64 {
	to := m.OxidantTemperature
	heat := m.Calorific +
		m.O2.Eval(to)*to*v.O2 +
		m.CO2.Eval(tRecyc)*tRecyc*v.CO2Recyc
	capacity := m.CO2.Eval(t)*v.CO2 + m.H2O.Eval(t)*v.H2O
	return heat/capacity - t
}

// FlameResidual is the combustor energy balance at flame temperature t for
// ratio k and recirculated CO2 at tRecyc, both in K. It is zero at the
// calorimetric flame temperature; the residual itself is a temperature
// difference.
func (m *Model) FlameResidual(t, k, tRecyc float64) (float64, error) {
	c, err := m.Composition(k)
	if err != nil {
		return 0, err
	}
	return m.residual(t-zeroCelsius, c.Volumes, tRecyc-zeroCelsius), nil
}

func (m *Model) flameTemperature(k, tRecyc float64) (float64, error) {
	c, err := m.Composition(k)
	if err != nil {
		return 0, err
	}
	return m.finder.Solve(func(t float64) (float64, error) {
		return m.residual(t, c.Volumes, tRecyc), nil
	}, flameGuess)
}

// FlameTemperature returns the calorimetric combustion temperature in K for
// ratio k and recirculated CO2 at tRecyc K.
func (m *Model) FlameTemperature(k, tRecyc float64) (float64, error) {
	t, err := m.flameTemperature(k, tRecyc-zeroCelsius)
	if err != nil {
		return 0, fmt.Errorf("flame temperature at k=%g: %w", k, err)
	}
	return t + zeroCelsius, nil
}

// RecirculationRatio returns the ratio at which the flame temperature equals
// tFlame, with recirculated CO2 at tRecyc. Both in K.
func (m *Model) RecirculationRatio(tFlame, tRecyc float64) (float64, error) {
	if !finitePositive(tFlame) || !finitePositive(tRecyc) {
		return 0, fmt.Errorf("%w: temperatures %v K, %v K", ErrInvalidComposition, tFlame, tRecyc)
	}
	if tFlame <= tRecyc {
		return 0, fmt.Errorf("%w: flame temperature %g K not above recirculated CO2 %g K",
			ErrInvalidComposition, tFlame, tRecyc)
	}
	target := tFlame - zeroCelsius
	recyc := tRecyc - zeroCelsius

	k, err := m.finder.Solve(func(k float64) (float64, error) {
		t, err := m.flameTemperature(k, recyc)
		return t - target, err
	}, ratioGuess)
	if err != nil {
		return 0, fmt.Errorf("recirculation ratio for %g K: %w", tFlame, err)
	}
	log.WithFields(log.Fields{
		"flame":  tFlame,
		"recyc":  tRecyc,
		"kRecyc": k,
	}).Debug("recirculation ratio solved")
	return k, nil
}

func finitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
