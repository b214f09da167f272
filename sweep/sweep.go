// Package sweep re-solves the cycle across a range of one boundary condition,
// spreading the points over a pool of workers.
package sweep

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"allam/cycle"
)

var ErrInvalidSpec = errors.New("invalid sweep")

type Spec struct {
	Parameter Parameter
	From, To  float64
	Steps     int
}

// Values returns Steps evenly spaced values from From to To inclusive.
func (s Spec) Values() ([]float64, error) {
	if s.Steps < 1 {
		return nil, fmt.Errorf("%w: %d steps", ErrInvalidSpec, s.Steps)
	}
	if math.IsNaN(s.From) || math.IsInf(s.From, 0) || math.IsNaN(s.To) || math.IsInf(s.To, 0) {
		return nil, fmt.Errorf("%w: range [%v, %v]", ErrInvalidSpec, s.From, s.To)
	}
	if s.Steps == 1 {
		return []float64{s.From}, nil
	}
	vs := make([]float64, s.Steps)
	step := (s.To - s.From) / float64(s.Steps-1)
	for i := range vs {
		vs[i] = s.From + float64(i)*step
	}
	vs[len(vs)-1] = s.To
	return vs, nil
}

// Point is one solved sweep point. Err is set when the point failed; Result
// is nil then.
type Point struct {
	Index  int
	Value  float64
	Result *cycle.Result
	Err    error
}

type Report struct {
	Spec    Spec
	Points  []Point
	Failed  int
	Elapsed time.Duration
}

// Best returns the solved point of highest cycle efficiency.
func (r *Report) Best() (Point, bool) {
	best, ok := Point{}, false
	for _, p := range r.Points {
		if p.Err != nil {
			continue
		}
		if !ok || p.Result.Aggregate.Efficiency > best.Result.Aggregate.Efficiency {
			best, ok = p, true
		}
	}
	return best, ok
}

// Solver is satisfied by *cycle.Solver.
type Solver interface {
	Solve(c cycle.Conditions) (*cycle.Result, error)
}

type Runner struct {
	solver  Solver
	workers int
}

// NewRunner returns a runner with the given pool size, one worker per CPU
// when workers <= 0.
func NewRunner(s Solver, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{solver: s, workers: workers}
}

type task struct {
	index int
	value float64
}

// Run solves every point of spec around base. Failed points are recorded
// and do not stop the sweep. When ctx is cancelled the remaining points fail
// with its error and Run returns it alongside the partial report.
func (r *Runner) Run(ctx context.Context, base cycle.Conditions, spec Spec) (*Report, error) {
	values, err := spec.Values()
	if err != nil {
		return nil, err
	}
	if _, err := spec.Parameter.Apply(base, 0); err != nil {
		return nil, err
	}

	start := time.Now()
	dispatchChan := make(chan task, len(values))
	doneChan := make(chan Point, len(values))

	workers := r.workers
	if workers > len(values) {
		workers = len(values)
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for t := range dispatchChan {
				doneChan <- r.solve(ctx, base, spec.Parameter, t)
			}
		}()
	}

	for i, v := range values {
		dispatchChan <- task{index: i, value: v}
	}
	close(dispatchChan)
	wg.Wait()
	close(doneChan)

	rep := &Report{Spec: spec, Points: make([]Point, len(values))}
	for p := range doneChan {
		rep.Points[p.Index] = p
		if p.Err != nil {
			rep.Failed++
		}
	}
	rep.Elapsed = time.Since(start)

	log.WithFields(log.Fields{
		"parameter": spec.Parameter,
		"points":    len(values),
		"failed":    rep.Failed,
		"workers":   workers,
		"elapsed":   rep.Elapsed,
	}).Info("sweep finished")

	return rep, ctx.Err()
}

func (r *Runner) solve(ctx context.Context, base cycle.Conditions, p Parameter, t task) Point {
	pt := Point{Index: t.index, Value: t.value}
	if err := ctx.Err(); err != nil {
		pt.Err = err
		return pt
	}
	c, err := p.Apply(base, t.value)
	if err != nil {
		pt.Err = err
		return pt
	}
	pt.Result, pt.Err = r.solver.Solve(c)
	if pt.Err != nil {
		log.WithFields(log.Fields{
			"parameter": p,
			"value":     t.value,
		}).Warn("sweep point failed: ", pt.Err)
	}
	return pt
}

// WriteCSV writes one row per point. Failed points leave the metrics empty
// and carry the error text.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"value", "k_recyc", "pinch", "work_cycle", "efc_cycle", "error"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, p := range rep.Points {
		row := []string{f(p.Value), "", "", "", "", ""}
		if p.Err != nil {
			row[5] = p.Err.Error()
		} else {
			a := p.Result.Aggregate
			row[1], row[2], row[3], row[4] = f(a.RecirculationRatio), f(a.Pinch), f(a.NetWork), f(a.Efficiency)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
