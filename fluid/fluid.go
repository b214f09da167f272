// Package fluid describes working fluids and the property backend the cycle
// solver queries for thermodynamic state.
package fluid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotResolvable is returned when a backend cannot evaluate a state point.
var ErrNotResolvable = errors.New("property not resolvable")

// ErrInvalidFluid is returned for malformed fluid descriptors.
var ErrInvalidFluid = errors.New("invalid fluid")

// Property names an intensive property or an independent state variable.
type Property string

const (
	Temperature  Property = "T"     // K
	Pressure     Property = "P"     // Pa
	Enthalpy     Property = "H"     // J/kg
	Entropy      Property = "S"     // J/(kg·K)
	Density      Property = "D"     // kg/m³
	HeatCapacity Property = "C"     // J/(kg·K), isobaric
	PhaseCode    Property = "Phase" // Phase as float64
)

// Phase follows the usual equation-of-state phase indices.
type Phase int

const (
	Liquid              Phase = 0
	Supercritical       Phase = 1
	SupercriticalGas    Phase = 2
	SupercriticalLiquid Phase = 3
	CriticalPoint       Phase = 4
	Gas                 Phase = 5
	TwoPhase            Phase = 6
	Unknown             Phase = 8
)

func (p Phase) String() string {
	switch p {
	case Liquid:
		return "liquid"
	case Supercritical:
		return "supercritical"
	case SupercriticalGas:
		return "supercritical_gas"
	case SupercriticalLiquid:
		return "supercritical_liquid"
	case CriticalPoint:
		return "critical_point"
	case Gas:
		return "gas"
	case TwoPhase:
		return "twophase"
	}
	return "unknown"
}

// Backend evaluates property out at the state fixed by (in1, v1) and (in2, v2).
type Backend interface {
	Props(out Property, in1 Property, v1 float64, in2 Property, v2 float64, f Fluid) (float64, error)
}

type Substance string

const (
	CO2     Substance = "CO2"
	Water   Substance = "water"
	Methane Substance = "methane"
	Oxygen  Substance = "oxygen"
)

type Component struct {
	Substance Substance
	Fraction  float64 // mole fraction
}

// Fluid is a pure substance or a mixture given by mole fractions.
type Fluid struct {
	Components []Component
}

// Pure returns the single-substance fluid s.
func Pure(s Substance) Fluid {
	return Fluid{Components: []Component{{Substance: s, Fraction: 1}}}
}

// Round3 rounds a mole fraction to the precision mixture descriptors carry.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Mixture builds a mixture descriptor. Fractions are rounded to 3 decimals
// and must sum to 1 within the rounding tolerance.
func Mixture(cs ...Component) (Fluid, error) {
	if len(cs) == 0 {
		return Fluid{}, fmt.Errorf("%w: empty mixture", ErrInvalidFluid)
	}
	out := make([]Component, 0, len(cs))
	sum := 0.0
	for _, c := range cs {
		if _, ok := species[c.Substance]; !ok {
			return Fluid{}, fmt.Errorf("%w: unknown substance %q", ErrInvalidFluid, c.Substance)
		}
		if math.IsNaN(c.Fraction) || c.Fraction < 0 || c.Fraction > 1 {
			return Fluid{}, fmt.Errorf("%w: fraction %v of %s", ErrInvalidFluid, c.Fraction, c.Substance)
		}
		x := Round3(c.Fraction)
		sum += x
		if x == 0 {
			continue
		}
		out = append(out, Component{Substance: c.Substance, Fraction: x})
	}
	if math.Abs(sum-1) > 1e-3+1e-12 {
		return Fluid{}, fmt.Errorf("%w: fractions sum to %v", ErrInvalidFluid, sum)
	}
	if len(out) == 1 {
		return Pure(out[0].Substance), nil
	}
	return Fluid{Components: out}, nil
}

func (f Fluid) IsPure() bool {
	return len(f.Components) == 1
}

// Fraction returns the mole fraction of s, zero when absent.
func (f Fluid) Fraction(s Substance) float64 {
	for _, c := range f.Components {
		if c.Substance == s {
			return c.Fraction
		}
	}
	return 0
}

// String renders the descriptor, e.g. "CO2" or "CO2[0.974]&water[0.026]".
func (f Fluid) String() string {
	if f.IsPure() {
		return string(f.Components[0].Substance)
	}
	parts := make([]string, len(f.Components))
	for i, c := range f.Components {
		parts[i] = string(c.Substance) + "[" + strconv.FormatFloat(c.Fraction, 'f', -1, 64) + "]"
	}
	return strings.Join(parts, "&")
}

func (f Fluid) validate() error {
	if len(f.Components) == 0 {
		return fmt.Errorf("%w: no components", ErrInvalidFluid)
	}
	sum := 0.0
	for _, c := range f.Components {
		if _, ok := species[c.Substance]; !ok {
			return fmt.Errorf("%w: unknown substance %q", ErrInvalidFluid, c.Substance)
		}
		if c.Fraction <= 0 || c.Fraction > 1 {
			return fmt.Errorf("%w: fraction %v of %s", ErrInvalidFluid, c.Fraction, c.Substance)
		}
		sum += c.Fraction
	}
	if math.Abs(sum-1) > 1e-3+1e-12 {
		return fmt.Errorf("%w: fractions sum to %v", ErrInvalidFluid, sum)
	}
	return nil
}

// MolarMass returns the molar mass of s in kg/mol.
func MolarMass(s Substance) (float64, error) {
	sp, ok := species[s]
	if !ok {
		return 0, fmt.Errorf("%w: unknown substance %q", ErrInvalidFluid, s)
	}
	return sp.molarMass, nil
}
