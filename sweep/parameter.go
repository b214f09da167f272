package sweep

import (
	"fmt"

	"allam/cycle"
)

// Parameter is the boundary condition a sweep varies.
type Parameter int

const (
	CompressorInletTemperature Parameter = iota
	TurbineInletTemperature
	RecirculatedTemperature
	MinPressure
	PressureRatio
	NetPower
)

var parameterNames = map[Parameter]string{
	CompressorInletTemperature: "temp_compressor",
	TurbineInletTemperature:    "temp_heat",
	RecirculatedTemperature:    "temp_recyc",
	MinPressure:                "pressure_min",
	PressureRatio:              "pressure_rate",
	NetPower:                   "power",
}

func (p Parameter) String() string {
	if s, ok := parameterNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Parameter(%d)", int(p))
}

func ParseParameter(s string) (Parameter, error) {
	for p, name := range parameterNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown sweep parameter %q", ErrInvalidSpec, s)
}

// Apply returns c with the parameter set to v.
func (p Parameter) Apply(c cycle.Conditions, v float64) (cycle.Conditions, error) {
	switch p {
	case CompressorInletTemperature:
		c.Temperatures[0] = v
	case TurbineInletTemperature:
		c.Temperatures[1] = v
	case RecirculatedTemperature:
		c.Temperatures[2] = v
	case MinPressure:
		c.MinPressure = v
	case PressureRatio:
		c.PressureRatio = v
	case NetPower:
		c.NetPower = v
	default:
		return c, fmt.Errorf("%w: unknown sweep parameter %d", ErrInvalidSpec, int(p))
	}
	return c, nil
}
