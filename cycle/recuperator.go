package cycle

import (
	"fmt"
	"math"

	"allam/fluid"
)

// Profile is the temperature distribution along the recuperator. Hot runs
// from the turbine outlet to the hot outlet, Cold from the compressor outlet
// to the cold outlet. In counterflow Hot[i] faces Cold[len-1-i].
type Profile struct {
	Hot  []float64 `json:"hot"`
	Cold []float64 `json:"cold"`

	MinDeltaT float64 `json:"min_dt"`
	// cycle end temperature minus marched end temperature
	HotResidual  float64 `json:"hot_res"`
	ColdResidual float64 `json:"cold_res"`
}

// RecuperatorProfile marches both recuperator streams in n equal enthalpy
// steps using the local heat capacity at each step.
func (r *Result) RecuperatorProfile(b fluid.Backend, n int) (*Profile, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d recuperator steps", ErrInvalidInput, n)
	}
	st := &r.Stations

	hot, err := march(b, r.Mixture, st[TurbineOutlet], st[RecuperatorHotOutlet], n)
	if err != nil {
		return nil, stationErr(RecuperatorHotOutlet, err)
	}
	cold, err := march(b, fluid.Pure(fluid.CO2), st[CompressorOutlet], st[RecuperatorColdOutlet], n)
	if err != nil {
		return nil, stationErr(RecuperatorColdOutlet, err)
	}

	p := &Profile{
		Hot:          hot,
		Cold:         cold,
		MinDeltaT:    math.Inf(1),
		HotResidual:  st[RecuperatorHotOutlet].Temperature - hot[n],
		ColdResidual: st[RecuperatorColdOutlet].Temperature - cold[n],
	}
	for i := range hot {
		p.MinDeltaT = math.Min(p.MinDeltaT, hot[i]-cold[n-i])
	}
	return p, nil
}

// march integrates dT = dh/cp along the isobar of from.
func march(b fluid.Backend, f fluid.Fluid, from, to Station, n int) ([]float64, error) {
	dh := (to.Enthalpy - from.Enthalpy) / float64(n)
	t := make([]float64, n+1)
	t[0] = from.Temperature
	for i := 0; i < n; i++ {
		cp, err := b.Props(fluid.HeatCapacity, fluid.Temperature, t[i], fluid.Pressure, from.Pressure, f)
		if err != nil {
			return nil, err
		}
		t[i+1] = t[i] + dh/cp
	}
	return t, nil
}
