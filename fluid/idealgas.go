package fluid

import (
	"fmt"
	"math"

	"allam/rootfind"
)

// IdealGas is the reference backend: ideal-gas mixtures with NIST Shomate
// heat capacities. Enthalpy is sensible enthalpy above 298.15 K; entropy is
// absolute with ideal mixing. It holds no mutable state and is safe for
// concurrent use.
type IdealGas struct {
	TMin, TMax float64 // validity envelope, K
	PMax       float64 // Pa

	finder rootfind.Brent
}

func NewIdealGas() *IdealGas {
	return &IdealGas{
		TMin: 200,
		TMax: 3000,
		PMax: 1e9,
	}
}

func (g *IdealGas) Props(out Property, in1 Property, v1 float64, in2 Property, v2 float64, f Fluid) (float64, error) {
	if err := f.validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotResolvable, err)
	}
	if in1 == Pressure {
		in1, v1, in2, v2 = in2, v2, in1, v1
	}
	if in2 != Pressure {
		return 0, fmt.Errorf("%w: unsupported input pair (%s, %s)", ErrNotResolvable, in1, in2)
	}
	p := v2
	if !(p > 0) || math.IsInf(p, 0) || p > g.PMax {
		return 0, fmt.Errorf("%w: pressure %g Pa outside (0, %g]", ErrNotResolvable, p, g.PMax)
	}

	var (
		T   float64
		err error
	)
	switch in1 {
	case Temperature:
		T = v1
	case Enthalpy, Entropy:
		T, err = g.invert(in1, v1, p, f)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%w: unsupported input pair (%s, %s)", ErrNotResolvable, in1, in2)
	}
	if !(T >= g.TMin && T <= g.TMax) {
		return 0, fmt.Errorf("%w: temperature %g K outside [%g, %g] for %s", ErrNotResolvable, T, g.TMin, g.TMax, f)
	}

	switch out {
	case Temperature:
		return T, nil
	case Pressure:
		return p, nil
	case PhaseCode:
		return float64(phase(T, p, f)), nil
	}
	return eval(out, T, p, f)
}

// invert finds T at which property in equals target along the isobar p.
func (g *IdealGas) invert(in Property, target, p float64, f Fluid) (float64, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrNotResolvable, in, target)
	}
	T, err := g.finder.Bracketed(func(T float64) (float64, error) {
		v, err := eval(in, T, p, f)
		return v - target, err
	}, g.TMin, g.TMax)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %g at P = %g for %s: %w", ErrNotResolvable, in, target, p, f, err)
	}
	return T, nil
}

func molarMass(f Fluid) float64 {
	m := 0.0
	for _, c := range f.Components {
		m += c.Fraction * species[c.Substance].molarMass
	}
	return m
}

// eval computes a mass-specific property at (T, p).
func eval(out Property, T, p float64, f Fluid) (float64, error) {
	m := molarMass(f)
	switch out {
	case Enthalpy:
		h := 0.0
		for _, c := range f.Components {
			h += c.Fraction * species[c.Substance].h(T)
		}
		return h / m, nil
	case HeatCapacity:
		cp := 0.0
		for _, c := range f.Components {
			cp += c.Fraction * species[c.Substance].cp(T)
		}
		return cp / m, nil
	case Entropy:
		s := 0.0
		for _, c := range f.Components {
			s += c.Fraction * (species[c.Substance].s0(T) - gasConstant*math.Log(c.Fraction*p/pRef))
		}
		return s / m, nil
	case Density:
		return p * m / (gasConstant * T), nil
	}
	return 0, fmt.Errorf("%w: unknown property %q", ErrNotResolvable, out)
}

// phase classifies against the Kay's-rule pseudo-critical point. An ideal
// gas never condenses, so subcritical states report Gas.
func phase(T, p float64, f Fluid) Phase {
	tc, pc := 0.0, 0.0
	for _, c := range f.Components {
		tc += c.Fraction * species[c.Substance].tc
		pc += c.Fraction * species[c.Substance].pc
	}
	switch {
	case T > tc && p > pc:
		return Supercritical
	case T > tc:
		return SupercriticalGas
	case p > pc:
		return SupercriticalLiquid
	}
	return Gas
}
