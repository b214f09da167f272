package cycle

import "math"

// optimalSpecificSpeed is the specific speed of best efficiency for a radial
// inflow turbine stage.
const optimalSpecificSpeed = 0.548

func (r *Result) turbineDuty() (q, dh float64) {
	out := r.Stations[TurbineOutlet]
	q = out.MassFlow / out.Density
	dh = math.Abs(r.Stations[TurbineInlet].Enthalpy - out.Enthalpy)
	return q, dh
}

// SpecificSpeed returns the turbine specific speed at rotor speed n, rev/s,
// based on the outlet volumetric flow.
func (r *Result) SpecificSpeed(n float64) float64 {
	q, dh := r.turbineDuty()
	return 2 * math.Pi * n * math.Sqrt(q) / math.Pow(dh, 0.75)
}

// OptimalSpeed returns the rotor speed, rev/s, that puts the turbine at its
// best-efficiency specific speed.
func (r *Result) OptimalSpeed() float64 {
	q, dh := r.turbineDuty()
	return optimalSpecificSpeed * math.Pow(dh, 0.75) / (2 * math.Pi * math.Sqrt(q))
}
