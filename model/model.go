package model

import (
	"allam/combustion"
	"allam/cycle"
	"allam/sweep"
)

// 前后端通信消息结构，结构化内容以 JSON 文本放在 Content 中
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Env is the operating point a client configures before starting a solve.
type Env struct {
	MinPressure   float64    `json:"min_pressure"` // Pa
	PressureRatio float64    `json:"pressure_ratio"`
	Temperatures  [3]float64 `json:"temperatures"` // K
	NetPower      float64    `json:"net_power"`    // kW
	PinchTarget   float64    `json:"pinch_target"` // K
}

func NewEnv(c cycle.Conditions) Env {
	return Env{
		MinPressure:   c.MinPressure,
		PressureRatio: c.PressureRatio,
		Temperatures:  c.Temperatures,
		NetPower:      c.NetPower,
		PinchTarget:   c.PinchTarget,
	}
}

func (e Env) Conditions() cycle.Conditions {
	return cycle.Conditions{
		MinPressure:   e.MinPressure,
		PressureRatio: e.PressureRatio,
		Temperatures:  e.Temperatures,
		NetPower:      e.NetPower,
		PinchTarget:   e.PinchTarget,
	}
}

// 参数扫描请求
type SweepReq struct {
	Parameter string  `json:"parameter"`
	From      float64 `json:"from"`
	To        float64 `json:"to"`
	Steps     int     `json:"steps"`
}

func (r SweepReq) Spec(defaultSteps int) (sweep.Spec, error) {
	p, err := sweep.ParseParameter(r.Parameter)
	if err != nil {
		return sweep.Spec{}, err
	}
	steps := r.Steps
	if steps == 0 {
		steps = defaultSteps
	}
	return sweep.Spec{Parameter: p, From: r.From, To: r.To, Steps: steps}, nil
}

type StationData struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	cycle.Station
}

type CycleData struct {
	Mixture      string                 `json:"mixture"`
	Stations     []StationData          `json:"stations"`
	Aggregate    cycle.Aggregate        `json:"aggregate"`
	Composition  combustion.Composition `json:"composition"`
	OptimalSpeed float64                `json:"optimal_speed"` // rev/s
	Recuperator  *cycle.Profile         `json:"recuperator,omitempty"`
}

func NewCycleData(r *cycle.Result) CycleData {
	d := CycleData{
		Mixture:      r.Mixture.String(),
		Stations:     make([]StationData, 0, cycle.NumStations),
		Aggregate:    r.Aggregate,
		Composition:  r.Composition,
		OptimalSpeed: r.OptimalSpeed(),
	}
	for i, s := range r.Stations {
		d.Stations = append(d.Stations, StationData{Id: i, Name: cycle.StationID(i).String(), Station: s})
	}
	return d
}

type SweepPoint struct {
	Value     float64          `json:"value"`
	Aggregate *cycle.Aggregate `json:"aggregate,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type SweepData struct {
	Parameter string       `json:"parameter"`
	Points    []SweepPoint `json:"points"`
	Failed    int          `json:"failed"`
	Best      *float64     `json:"best,omitempty"` // parameter value of highest efficiency
	ElapsedMs int64        `json:"elapsed_ms"`
}

func NewSweepData(rep *sweep.Report) SweepData {
	d := SweepData{
		Parameter: rep.Spec.Parameter.String(),
		Points:    make([]SweepPoint, len(rep.Points)),
		Failed:    rep.Failed,
		ElapsedMs: rep.Elapsed.Milliseconds(),
	}
	for i, p := range rep.Points {
		d.Points[i].Value = p.Value
		if p.Err != nil {
			d.Points[i].Error = p.Err.Error()
			continue
		}
		a := p.Result.Aggregate
		d.Points[i].Aggregate = &a
	}
	if best, ok := rep.Best(); ok {
		v := best.Value
		d.Best = &v
	}
	return d
}
