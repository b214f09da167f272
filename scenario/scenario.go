// Package scenario loads operating points and sweeps from HCL files.
//
// A scenario file looks like:
//
//	operating_point "base" {
//	  min_pressure   = 80 * bar
//	  pressure_ratio = 2.2
//	  temperatures   = [zero_celsius + 36.85, 1073, 900]
//	  net_power      = 100
//	}
//
//	sweep "recyc" {
//	  point     = "base"
//	  parameter = "temp_recyc"
//	  from      = 850
//	  to        = 1000
//	  steps     = 16
//	}
//
// Expressions may use zero_celsius (273.15 K), bar and mpa (in Pa).
package scenario

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	log "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"allam/cycle"
	"allam/sweep"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// DefaultNetPower is used when an operating point omits net_power and the
// caller supplies no default, kW.
const DefaultNetPower = 100.0

// Defaults fill the optional attributes an operating point omits.
type Defaults struct {
	NetPower    float64 // kW, DefaultNetPower when zero
	PinchTarget float64 // K
}

type Point struct {
	Name       string
	Conditions cycle.Conditions
}

type Sweep struct {
	Name    string
	Point   string
	Spec    sweep.Spec
	Workers int // zero leaves the pool size to the caller
}

type Scenario struct {
	Points []Point
	Sweeps []Sweep
}

// Point returns the operating point called name.
func (s *Scenario) Point(name string) (Point, bool) {
	for _, p := range s.Points {
		if p.Name == name {
			return p, true
		}
	}
	return Point{}, false
}

type hclFile struct {
	Points []*hclPoint `hcl:"operating_point,block"`
	Sweeps []*hclSweep `hcl:"sweep,block"`
}

type hclPoint struct {
	Name          string    `hcl:"name,label"`
	MinPressure   float64   `hcl:"min_pressure"`
	PressureRatio float64   `hcl:"pressure_ratio"`
	Temperatures  []float64 `hcl:"temperatures"`
	NetPower      *float64  `hcl:"net_power,optional"`
	PinchTarget   *float64  `hcl:"pinch_target,optional"`
}

type hclSweep struct {
	Name      string  `hcl:"name,label"`
	Point     string  `hcl:"point"`
	Parameter string  `hcl:"parameter"`
	From      float64 `hcl:"from"`
	To        float64 `hcl:"to"`
	Steps     int     `hcl:"steps"`
	Workers   *int    `hcl:"workers,optional"`
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"zero_celsius": cty.NumberFloatVal(273.15),
			"bar":          cty.NumberFloatVal(1e5),
			"mpa":          cty.NumberFloatVal(1e6),
		},
	}
}

// Load parses the scenario file at path.
func Load(path string, def Defaults) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file, path, def)
}

// Parse parses scenario source; filename is only used in diagnostics.
func Parse(src []byte, filename string, def Defaults) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(file, filename, def)
}

func decode(file *hcl.File, filename string, def Defaults) (*Scenario, error) {
	if def.NetPower == 0 {
		def.NetPower = DefaultNetPower
	}

	var parsed hclFile
	diags := gohcl.DecodeBody(file.Body, evalContext(), &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	s := &Scenario{}
	for _, hp := range parsed.Points {
		p, err := hp.point(def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if _, dup := s.Point(p.Name); dup {
			return nil, fmt.Errorf("%s: %w: duplicate operating_point %q", filename, ErrInvalidScenario, p.Name)
		}
		s.Points = append(s.Points, p)
	}

	seen := make(map[string]bool, len(parsed.Sweeps))
	for _, hs := range parsed.Sweeps {
		if seen[hs.Name] {
			return nil, fmt.Errorf("%s: %w: duplicate sweep %q", filename, ErrInvalidScenario, hs.Name)
		}
		seen[hs.Name] = true
		if _, ok := s.Point(hs.Point); !ok {
			return nil, fmt.Errorf("%s: %w: sweep %q refers to unknown operating_point %q",
				filename, ErrInvalidScenario, hs.Name, hs.Point)
		}
		sw, err := hs.sweep()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		s.Sweeps = append(s.Sweeps, sw)
	}

	log.WithFields(log.Fields{
		"file":   filename,
		"points": len(s.Points),
		"sweeps": len(s.Sweeps),
	}).Debug("scenario loaded")
	return s, nil
}

func (hp *hclPoint) point(def Defaults) (Point, error) {
	if len(hp.Temperatures) != 3 {
		return Point{}, fmt.Errorf("%w: operating_point %q needs 3 temperatures, got %d",
			ErrInvalidScenario, hp.Name, len(hp.Temperatures))
	}
	c := cycle.Conditions{
		MinPressure:   hp.MinPressure,
		PressureRatio: hp.PressureRatio,
		NetPower:      def.NetPower,
		PinchTarget:   def.PinchTarget,
	}
	copy(c.Temperatures[:], hp.Temperatures)
	if hp.NetPower != nil {
		c.NetPower = *hp.NetPower
	}
	if hp.PinchTarget != nil {
		c.PinchTarget = *hp.PinchTarget
	}
	return Point{Name: hp.Name, Conditions: c}, nil
}

func (hs *hclSweep) sweep() (Sweep, error) {
	p, err := sweep.ParseParameter(hs.Parameter)
	if err != nil {
		return Sweep{}, fmt.Errorf("%w: sweep %q: %w", ErrInvalidScenario, hs.Name, err)
	}
	spec := sweep.Spec{Parameter: p, From: hs.From, To: hs.To, Steps: hs.Steps}
	if _, err := spec.Values(); err != nil {
		return Sweep{}, fmt.Errorf("%w: sweep %q: %w", ErrInvalidScenario, hs.Name, err)
	}
	sw := Sweep{Name: hs.Name, Point: hs.Point, Spec: spec}
	if hs.Workers != nil {
		if *hs.Workers < 0 {
			return Sweep{}, fmt.Errorf("%w: sweep %q: %d workers", ErrInvalidScenario, hs.Name, *hs.Workers)
		}
		sw.Workers = *hs.Workers
	}
	return sw, nil
}
