// Package cycle resolves the thermodynamic state of a recuperated
// oxy-combustion supercritical CO2 cycle at its eight stations and derives the
// cycle metrics.
package cycle

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"allam/combustion"
	"allam/fluid"
	"allam/rootfind"
)

// Conditions is one operating point.
type Conditions struct {
	MinPressure   float64 // compressor inlet, Pa
	PressureRatio float64
	// compressor inlet, turbine inlet and recirculated CO2 temperatures, K
	Temperatures [3]float64
	NetPower     float64 // kW
	PinchTarget  float64 // K, zero selects the recuperator temperature head
}

type Aggregate struct {
	RecirculationRatio float64 `json:"k_recyc"`
	Pinch              float64 `json:"pinch"`        // K
	PinchTarget        float64 `json:"pinch_target"` // K
	NetWork            float64 `json:"work_cycle"`   // J/kg
	NetPower           float64 `json:"power"`        // W
	Efficiency         float64 `json:"efc_cycle"`

	TurbinePower    float64 `json:"turbine_power"` // W
	CompressorPower float64 `json:"compressor_power"`
	HeaterDuty      float64 `json:"heater_duty"`
	RecuperatorDuty float64 `json:"recuperator_duty"`
	CoolerDuty      float64 `json:"cooler_duty"`
}

type Result struct {
	Conditions  Conditions
	Stations    Stations
	Aggregate   Aggregate
	Composition combustion.Composition
	Mixture     fluid.Fluid
}

type Solver struct {
	backend    fluid.Backend
	finder     rootfind.Finder
	coef       Coefficients
	tMin, tMax float64
	combustor  *combustion.Model
}

type Option func(s *Solver)

func WithFinder(f rootfind.Finder) Option {
	return func(s *Solver) {
		s.finder = f
	}
}

func WithCoefficients(c Coefficients) Option {
	return func(s *Solver) {
		s.coef = c
	}
}

// WithLimits bounds the accepted boundary temperatures, K.
func WithLimits(tMin, tMax float64) Option {
	return func(s *Solver) {
		s.tMin, s.tMax = tMin, tMax
	}
}

func NewSolver(b fluid.Backend, opts ...Option) (*Solver, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil property backend", ErrInvalidInput)
	}
	s := &Solver{
		backend: b,
		coef:    DefaultCoefficients(),
		tMin:    200,
		tMax:    3000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.finder == nil {
		s.finder = rootfind.Default(rootfind.DefaultOptions())
	}
	if err := s.coef.validate(); err != nil {
		return nil, err
	}
	if !(s.tMin > 0 && s.tMin < s.tMax) {
		return nil, fmt.Errorf("%w: temperature limits [%v, %v]", ErrInvalidInput, s.tMin, s.tMax)
	}

	var err error
	s.combustor, err = combustion.New(s.finder)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Coefficients returns a copy of the solver's component parameters.
func (s *Solver) Coefficients() Coefficients {
	return s.coef
}

func (c Coefficients) validate() error {
	for _, id := range dropStations {
		if v := c.PressureDrop[id]; !(v > 0 && v <= 1) {
			return fmt.Errorf("%w: pressure drop %v at station %d", ErrInvalidInput, v, id)
		}
	}
	for id, v := range c.Efficiency {
		if !(v > 0 && v <= 1) {
			return fmt.Errorf("%w: efficiency %v at station %d", ErrInvalidInput, v, id)
		}
	}
	for id, v := range c.TemperatureHead {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: temperature head %v at station %d", ErrInvalidInput, v, id)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (s *Solver) validate(c Conditions) error {
	if !(c.MinPressure > 0) || !finite(c.MinPressure) {
		return fmt.Errorf("%w: min pressure %v Pa", ErrInvalidInput, c.MinPressure)
	}
	if !(c.PressureRatio > 1) || !finite(c.PressureRatio) {
		return fmt.Errorf("%w: pressure ratio %v must exceed 1", ErrInvalidInput, c.PressureRatio)
	}
	for i, T := range c.Temperatures {
		if !(T >= s.tMin && T <= s.tMax) {
			return fmt.Errorf("%w: temperature[%d] %v K outside [%v, %v]", ErrInvalidInput, i, T, s.tMin, s.tMax)
		}
	}
	if c.Temperatures[1] <= c.Temperatures[2] {
		return fmt.Errorf("%w: turbine inlet %v K not above recirculated CO2 %v K",
			ErrInvalidInput, c.Temperatures[1], c.Temperatures[2])
	}
	if !(c.NetPower > 0) || !finite(c.NetPower) {
		return fmt.Errorf("%w: net power %v kW", ErrInvalidInput, c.NetPower)
	}
	if !(c.PinchTarget >= 0) || !finite(c.PinchTarget) {
		return fmt.Errorf("%w: pinch target %v K", ErrInvalidInput, c.PinchTarget)
	}

	// line losses eat part of the pressure ratio; the turbine must still expand
	st := s.coef.stations()
	pressures(&st, c.MinPressure, c.PressureRatio)
	if in, out := st[TurbineInlet].Pressure, st[TurbineOutlet].Pressure; !(in > out) {
		return fmt.Errorf("%w: pressure ratio %v leaves turbine inlet %.4g Pa not above outlet %.4g Pa",
			ErrInvalidInput, c.PressureRatio, in, out)
	}
	return nil
}

// Solve resolves one operating point. Every call starts from fresh stations,
// so a Solver may be shared between goroutines when its backend is.
func (s *Solver) Solve(c Conditions) (*Result, error) {
	if err := s.validate(c); err != nil {
		return nil, err
	}
	if c.PinchTarget == 0 {
		c.PinchTarget = s.coef.TemperatureHead[RecuperatorColdOutlet]
	}

	st := s.coef.stations()
	st[CompressorInlet].Temperature = c.Temperatures[0]
	st[TurbineInlet].Temperature = c.Temperatures[1]
	st[RecuperatorColdOutlet].Temperature = c.Temperatures[2]
	pressures(&st, c.MinPressure, c.PressureRatio)

	k, err := s.combustor.RecirculationRatio(st[TurbineInlet].Temperature, st[RecuperatorColdOutlet].Temperature)
	if err != nil {
		return nil, stationErr(TurbineInlet, err)
	}
	comp, err := s.combustor.Composition(k)
	if err != nil {
		return nil, stationErr(TurbineInlet, err)
	}
	xCO2 := fluid.Round3(comp.Products.CO2.Mole)
	xH2O := fluid.Round3(1 - xCO2)
	mix, err := fluid.Mixture(
		fluid.Component{Substance: fluid.CO2, Fraction: xCO2},
		fluid.Component{Substance: fluid.Water, Fraction: xH2O},
	)
	if err != nil {
		return nil, stationErr(TurbineInlet, err)
	}
	for i := range st {
		if StationID(i) <= RecuperatorHotOutlet {
			st[i].CO2, st[i].H2O = xCO2, xH2O
		} else {
			st[i].CO2, st[i].H2O = 1, 0
		}
	}

	log.WithFields(log.Fields{
		"pMin":    c.MinPressure,
		"piC":     c.PressureRatio,
		"temps":   c.Temperatures,
		"kRecyc":  k,
		"mixture": mix.String(),
	}).Debug("resolving cycle")

	r := &resolver{
		backend: s.backend,
		finder:  s.finder,
		st:      &st,
		co2:     fluid.Pure(fluid.CO2),
		mix:     mix,
		recyc:   comp.Products.CO2Recyc.Mass,
	}
	for _, id := range ResolutionOrder {
		if err := r.resolve(id); err != nil {
			return nil, stationErr(id, err)
		}
	}

	for i := range st {
		up := StationID(i).Upstream()
		st[i].DeltaT = st[i].Temperature - st[up].Temperature
		st[i].DeltaH = st[i].Enthalpy - st[up].Enthalpy
	}
	st[TurbineOutlet].PressureDrop = st[TurbineInlet].Pressure / st[TurbineOutlet].Pressure
	st[CompressorOutlet].PressureDrop = st[CompressorInlet].Pressure / st[CompressorOutlet].Pressure

	agg, err := aggregate(&st, c, comp)
	if err != nil {
		return nil, err
	}
	if agg.Pinch < c.PinchTarget {
		log.WithFields(log.Fields{
			"pinch":  agg.Pinch,
			"target": c.PinchTarget,
		}).Warn("recuperator pinch below target")
	}

	return &Result{
		Conditions:  c,
		Stations:    st,
		Aggregate:   agg,
		Composition: comp,
		Mixture:     mix,
	}, nil
}

// pressures derives every station pressure from the compressor inlet.
func pressures(st *Stations, pMin, ratio float64) {
	st[CompressorInlet].Pressure = pMin
	st[CompressorOutlet].Pressure = st[CompressorInlet].Pressure * ratio
	st[RecuperatorColdOutlet].Pressure = st[CompressorOutlet].Pressure * st[RecuperatorColdOutlet].PressureDrop
	st[TurbineInlet].Pressure = st[RecuperatorColdOutlet].Pressure * st[TurbineInlet].PressureDrop
	st[ExtractionOutlet].Pressure = st[CompressorInlet].Pressure / st[CompressorInlet].PressureDrop
	st[SeparatorOutlet].Pressure = st[ExtractionOutlet].Pressure / st[ExtractionOutlet].PressureDrop
	st[RecuperatorHotOutlet].Pressure = st[SeparatorOutlet].Pressure / st[SeparatorOutlet].PressureDrop
	st[TurbineOutlet].Pressure = st[RecuperatorHotOutlet].Pressure / st[RecuperatorHotOutlet].PressureDrop
}

type resolver struct {
	backend  fluid.Backend
	finder   rootfind.Finder
	st       *Stations
	co2, mix fluid.Fluid
	recyc    float64 // recirculated CO2 mass fraction of the products
}

func (r *resolver) resolve(id StationID) error {
	st := r.st
	s := &st[id]
	switch id {
	case CompressorInlet, RecuperatorColdOutlet:
		return evaluate(r.backend, s, r.co2, stateProps...)

	case TurbineInlet:
		return evaluate(r.backend, s, r.mix, stateProps...)

	case CompressorOutlet:
		in := &st[CompressorInlet]
		hs, err := r.backend.Props(fluid.Enthalpy, fluid.Entropy, in.Entropy, fluid.Pressure, s.Pressure, r.co2)
		if err != nil {
			return err
		}
		s.Enthalpy = in.Enthalpy + (hs-in.Enthalpy)/s.Efficiency
		s.Temperature, err = r.backend.Props(fluid.Temperature, fluid.Enthalpy, s.Enthalpy, fluid.Pressure, s.Pressure, r.co2)
		if err != nil {
			return err
		}
		return evaluate(r.backend, s, r.co2, fluid.Entropy, fluid.Density, fluid.HeatCapacity, fluid.PhaseCode)

	case TurbineOutlet:
		in := &st[TurbineInlet]
		ts, err := temperatureFromEntropy(r.finder, r.backend, r.mix, s.Pressure, in.Entropy)
		if err != nil {
			return fmt.Errorf("isentropic expansion: %w", err)
		}
		hs, err := r.backend.Props(fluid.Enthalpy, fluid.Temperature, ts, fluid.Pressure, s.Pressure, r.mix)
		if err != nil {
			return err
		}
		s.Enthalpy = in.Enthalpy + (hs-in.Enthalpy)*s.Efficiency
		return r.fromEnthalpy(s, r.mix)

	case RecuperatorHotOutlet:
		// heat released by the hot mixture is taken up by the recirculated CO2
		cold := st[RecuperatorColdOutlet].Enthalpy - st[CompressorOutlet].Enthalpy
		s.Enthalpy = st[TurbineOutlet].Enthalpy - r.recyc*cold
		return r.fromEnthalpy(s, r.mix)

	case SeparatorOutlet, ExtractionOutlet:
		s.Temperature = st[RecuperatorHotOutlet].Temperature
		return evaluate(r.backend, s, r.co2, stateProps...)
	}
	return fmt.Errorf("unknown station %d", id)
}

func (r *resolver) fromEnthalpy(s *Station, f fluid.Fluid) error {
	var err error
	s.Temperature, err = temperatureFromEnthalpy(r.finder, r.backend, f, s.Pressure, s.Enthalpy)
	if err != nil {
		return fmt.Errorf("temperature from enthalpy: %w", err)
	}
	return evaluate(r.backend, s, f, fluid.Entropy, fluid.Density, fluid.HeatCapacity, fluid.PhaseCode)
}

func aggregate(st *Stations, c Conditions, comp combustion.Composition) (Aggregate, error) {
	h := func(id StationID) float64 { return st[id].Enthalpy }

	turbine := h(TurbineOutlet) - h(TurbineInlet)
	if !(turbine < 0) {
		return Aggregate{}, fmt.Errorf("%w: turbine enthalpy change %v J/kg is not an expansion", ErrDegenerate, turbine)
	}
	cooler := h(CompressorInlet) - h(ExtractionOutlet)
	drop := math.Abs(turbine + cooler)
	if drop == 0 || !finite(drop) {
		return Aggregate{}, fmt.Errorf("%w: turbine and cooler enthalpy changes cancel", ErrDegenerate)
	}
	power := c.NetPower * 1000

	flow := power / drop
	st[TurbineInlet].MassFlow = flow
	st[TurbineOutlet].MassFlow = flow
	st[RecuperatorHotOutlet].MassFlow = flow
	st[SeparatorOutlet].MassFlow = flow * comp.Products.CO2.Mole
	st[ExtractionOutlet].MassFlow = st[SeparatorOutlet].MassFlow * comp.Products.CO2Recyc.Mole
	for _, id := range []StationID{CompressorInlet, CompressorOutlet, RecuperatorColdOutlet} {
		st[id].MassFlow = st[ExtractionOutlet].MassFlow
	}

	heater := h(TurbineInlet) - h(RecuperatorColdOutlet)
	if !(heater > 0) {
		return Aggregate{}, fmt.Errorf("%w: heater duty %v J/kg", ErrDegenerate, heater)
	}
	compressor := h(CompressorOutlet) - h(CompressorInlet)
	work := math.Abs(-turbine - compressor*comp.Products.CO2Recyc.Mass)

	return Aggregate{
		RecirculationRatio: comp.Ratio,
		Pinch:              st[TurbineOutlet].Temperature - st[RecuperatorColdOutlet].Temperature,
		PinchTarget:        c.PinchTarget,
		NetWork:            work,
		NetPower:           power,
		Efficiency:         work / heater,

		TurbinePower:    -turbine * flow,
		CompressorPower: compressor * st[CompressorInlet].MassFlow,
		HeaterDuty:      heater * flow,
		RecuperatorDuty: (h(TurbineOutlet) - h(RecuperatorHotOutlet)) * flow,
		CoolerDuty:      -cooler * st[ExtractionOutlet].MassFlow,
	}, nil
}
