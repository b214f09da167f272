package cycle

import (
	"encoding/csv"
	"io"
	"strconv"
)

var stationHeader = []string{
	"station", "CO2", "H2O", "temp", "dt", "pres", "dp_rel",
	"dens", "entr", "enth", "dh", "sp_heat", "efc", "phase", "mfr",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteStations writes one CSV row per station in station order.
func WriteStations(w io.Writer, r *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stationHeader); err != nil {
		return err
	}
	for i, s := range r.Stations {
		row := []string{strconv.Itoa(i)}
		for _, v := range []float64{
			s.CO2, s.H2O, s.Temperature, s.DeltaT, s.Pressure, s.PressureDrop,
			s.Density, s.Entropy, s.Enthalpy, s.DeltaH, s.HeatCapacity, s.Efficiency,
		} {
			row = append(row, formatFloat(v))
		}
		row = append(row, strconv.Itoa(int(s.Phase)), formatFloat(s.MassFlow))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregate writes the cycle metrics as key,value rows.
func WriteAggregate(w io.Writer, r *Result) error {
	a := r.Aggregate
	rows := [][]string{
		{"key", "value"},
		{"k_recyc", formatFloat(a.RecirculationRatio)},
		{"pinch", formatFloat(a.Pinch)},
		{"work_cycle", formatFloat(a.NetWork)},
		{"efc_cycle", formatFloat(a.Efficiency)},
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
