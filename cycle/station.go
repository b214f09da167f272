package cycle

import (
	"math"

	"allam/fluid"
)

// StationID indexes the fixed cycle topology.
type StationID int

const (
	TurbineInlet StationID = iota
	TurbineOutlet
	RecuperatorHotOutlet
	SeparatorOutlet
	ExtractionOutlet
	CompressorInlet
	CompressorOutlet
	RecuperatorColdOutlet

	NumStations = 8
)

var stationNames = [NumStations]string{
	"turbine inlet",
	"turbine outlet",
	"recuperator hot outlet",
	"separator outlet",
	"extraction outlet",
	"compressor inlet",
	"compressor outlet",
	"recuperator cold outlet",
}

func (id StationID) String() string {
	if id < 0 || id >= NumStations {
		return "unknown"
	}
	return stationNames[id]
}

// Upstream returns the preceding station in flow direction.
func (id StationID) Upstream() StationID {
	return (id + NumStations - 1) % NumStations
}

// ResolutionOrder is the order stations are resolved in. Each station only
// depends on stations earlier in the list.
var ResolutionOrder = [NumStations]StationID{
	CompressorInlet,
	CompressorOutlet,
	TurbineInlet,
	TurbineOutlet,
	RecuperatorColdOutlet,
	RecuperatorHotOutlet,
	SeparatorOutlet,
	ExtractionOutlet,
}

type Station struct {
	CO2          float64     `json:"CO2"` // mole fraction
	H2O          float64     `json:"H2O"`
	Temperature  float64     `json:"temp"` // K
	DeltaT       float64     `json:"dt"`
	Pressure     float64     `json:"pres"` // Pa
	PressureDrop float64     `json:"dp_rel"`
	Density      float64     `json:"dens"` // kg/m³
	Entropy      float64     `json:"entr"` // J/(kg·K)
	Enthalpy     float64     `json:"enth"` // J/kg
	DeltaH       float64     `json:"dh"`
	HeatCapacity float64     `json:"sp_heat"`
	Efficiency   float64     `json:"efc"`
	Phase        fluid.Phase `json:"phase"`
	MassFlow     float64     `json:"mfr"` // kg/s
}

func (s *Station) set(p fluid.Property, v float64) {
	switch p {
	case fluid.Temperature:
		s.Temperature = v
	case fluid.Enthalpy:
		s.Enthalpy = v
	case fluid.Entropy:
		s.Entropy = v
	case fluid.Density:
		s.Density = v
	case fluid.HeatCapacity:
		s.HeatCapacity = v
	case fluid.PhaseCode:
		s.Phase = fluid.Phase(v)
	}
}

type Stations [NumStations]Station

// Coefficients are the per-station component parameters. PressureDrop of the
// turbine outlet and compressor outlet is derived during a solve and ignored
// here.
type Coefficients struct {
	PressureDrop    [NumStations]float64
	Efficiency      [NumStations]float64
	TemperatureHead [NumStations]float64 // K
}

func DefaultCoefficients() Coefficients {
	nan := math.NaN()
	return Coefficients{
		PressureDrop:    [NumStations]float64{.98, nan, .95, .99, 1, .95, nan, .95},
		Efficiency:      [NumStations]float64{.99, .9, .85, 1, 1, 1, .86, .85},
		TemperatureHead: [NumStations]float64{0, 0, 5, 0, 0, 0, 0, 5},
	}
}

// dropStations are the stations whose pressure-drop factor enters the
// pressure chain.
var dropStations = []StationID{
	TurbineInlet, RecuperatorHotOutlet, SeparatorOutlet,
	ExtractionOutlet, CompressorInlet, RecuperatorColdOutlet,
}

func (c Coefficients) stations() Stations {
	var st Stations
	for i := range st {
		st[i].PressureDrop = c.PressureDrop[i]
		st[i].Efficiency = c.Efficiency[i]
	}
	return st
}
