package fluid

import "math"

const (
	gasConstant = 8.314462618 // J/(mol·K)
	tRef        = 298.15      // K
	pRef        = 101325.0    // Pa
)

// shomate holds NIST Shomate coefficients for one temperature range.
// cp = A + B·t + C·t² + D·t³ + E/t², t = T/1000, J/(mol·K).
type shomate struct {
	tMax             float64
	a, b, c, d, e, g float64
}

func (s shomate) cp(t float64) float64 {
	return s.a + t*(s.b+t*(s.c+t*s.d)) + s.e/(t*t)
}

// enthalpy integral in J/mol, up to a constant
func (s shomate) h(t float64) float64 {
	return 1000 * (s.a*t + s.b*t*t/2 + s.c*t*t*t/3 + s.d*t*t*t*t/4 - s.e/t)
}

// standard entropy in J/(mol·K)
func (s shomate) s(t float64) float64 {
	return s.a*math.Log(t) + s.b*t + s.c*t*t/2 + s.d*t*t*t/3 - s.e/(2*t*t) + s.g
}

type substance struct {
	molarMass float64 // kg/mol
	tc, pc    float64 // critical point
	ranges    []shomate
	hOffset   []float64 // per range, so that h(tRef) = 0 and h is continuous
}

func (sp *substance) rangeAt(T float64) int {
	for i, r := range sp.ranges {
		if T <= r.tMax {
			return i
		}
	}
	return len(sp.ranges) - 1
}

// cp in J/(mol·K)
func (sp *substance) cp(T float64) float64 {
	return sp.ranges[sp.rangeAt(T)].cp(T / 1000)
}

// sensible enthalpy relative to tRef, J/mol
func (sp *substance) h(T float64) float64 {
	i := sp.rangeAt(T)
	return sp.ranges[i].h(T/1000) - sp.hOffset[i]
}

// standard-state entropy at T, J/(mol·K)
func (sp *substance) s0(T float64) float64 {
	return sp.ranges[sp.rangeAt(T)].s(T / 1000)
}

func newSubstance(m, tc, pc float64, ranges ...shomate) *substance {
	sp := &substance{molarMass: m, tc: tc, pc: pc, ranges: ranges}
	sp.hOffset = make([]float64, len(ranges))
	sp.hOffset[0] = ranges[0].h(tRef / 1000)
	for i := 1; i < len(ranges); i++ {
		tb := ranges[i-1].tMax / 1000
		// value of the previous range at the break, re-based onto this one
		prev := ranges[i-1].h(tb) - sp.hOffset[i-1]
		sp.hOffset[i] = ranges[i].h(tb) - prev
	}
	return sp
}

// NIST Chemistry WebBook gas-phase Shomate fits.
var species = map[Substance]*substance{
	CO2: newSubstance(0.0440095, 304.1282, 7.3773e6,
		shomate{tMax: 1200, a: 24.99735, b: 55.18696, c: -33.69137, d: 7.948387, e: -0.136638, g: 228.2431},
		shomate{tMax: math.Inf(1), a: 58.16639, b: 2.720074, c: -0.492289, d: 0.038844, e: -6.447293, g: 263.6125},
	),
	Water: newSubstance(0.01801528, 647.096, 22.064e6,
		shomate{tMax: 1700, a: 30.09200, b: 6.832514, c: 6.793435, d: -2.534480, e: 0.082139, g: 223.3967},
		shomate{tMax: math.Inf(1), a: 41.96426, b: 8.622053, c: -1.499780, d: 0.098119, e: -11.15764, g: 219.7809},
	),
	Methane: newSubstance(0.0160428, 190.564, 4.5992e6,
		shomate{tMax: 1300, a: -0.703029, b: 108.4773, c: -42.52157, d: 5.862788, e: 0.678565, g: 158.7163},
		shomate{tMax: math.Inf(1), a: 85.81217, b: 11.26467, c: -2.114146, d: 0.138190, e: -26.42221, g: 224.4143},
	),
	Oxygen: newSubstance(0.0319988, 154.581, 5.043e6,
		shomate{tMax: 700, a: 31.32234, b: -20.23531, c: 57.86644, d: -36.50624, e: -0.007374, g: 246.7945},
		shomate{tMax: math.Inf(1), a: 30.03235, b: 8.772972, c: -3.988133, d: 0.788313, e: -0.741599, g: 236.1663},
	),
}
