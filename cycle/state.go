package cycle

import (
	"allam/fluid"
	"allam/rootfind"
)

// initial guesses for temperature inversion, K
const (
	entropyGuess  = 500.0
	enthalpyGuess = 1000.0
)

// temperatureAt finds T on the isobar p at which property in equals target.
func temperatureAt(finder rootfind.Finder, b fluid.Backend, f fluid.Fluid, in fluid.Property, p, target, guess float64) (float64, error) {
	return finder.Solve(func(T float64) (float64, error) {
		v, err := b.Props(in, fluid.Temperature, T, fluid.Pressure, p, f)
		if err != nil {
			return 0, err
		}
		return v - target, nil
	}, guess)
}

func temperatureFromEntropy(finder rootfind.Finder, b fluid.Backend, f fluid.Fluid, p, s float64) (float64, error) {
	return temperatureAt(finder, b, f, fluid.Entropy, p, s, entropyGuess)
}

func temperatureFromEnthalpy(finder rootfind.Finder, b fluid.Backend, f fluid.Fluid, p, h float64) (float64, error) {
	return temperatureAt(finder, b, f, fluid.Enthalpy, p, h, enthalpyGuess)
}

var stateProps = []fluid.Property{
	fluid.Enthalpy, fluid.Entropy, fluid.Density, fluid.HeatCapacity, fluid.PhaseCode,
}

// evaluate fills props of st from its temperature and pressure.
func evaluate(b fluid.Backend, st *Station, f fluid.Fluid, props ...fluid.Property) error {
	for _, p := range props {
		v, err := b.Props(p, fluid.Temperature, st.Temperature, fluid.Pressure, st.Pressure, f)
		if err != nil {
			return err
		}
		st.set(p, v)
	}
	return nil
}
