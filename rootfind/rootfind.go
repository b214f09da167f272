// Package rootfind solves scalar equations f(x) = 0 from an initial guess.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNonConvergent is returned when a finder exhausts its iteration budget
	// or runs into a degenerate step.
	ErrNonConvergent = errors.New("non-convergent")
	// ErrNoBracket is returned when no sign change is found around the guess.
	ErrNoBracket = fmt.Errorf("%w: no sign change found", ErrNonConvergent)
)

// Func is a residual. A non-nil error aborts the finder and is returned to
// the caller wrapped.
type Func func(x float64) (float64, error)

// Finder finds a root of f near guess.
type Finder interface {
	Solve(f Func, guess float64) (float64, error)
}

// Options bound every finder in this package.
type Options struct {
	XTol    float64 // relative step tolerance, |dx| <= XTol*max(1,|x|)
	FTol    float64 // absolute residual tolerance, 0 disables
	MaxIter int

	// bracket expansion for Brent
	Factor    float64
	MaxExpand int

	// relative finite-difference step for Newton
	Step float64
}

// DefaultOptions returns the tolerances used throughout the solver.
func DefaultOptions() Options {
	return Options{
		XTol:      1e-10,
		MaxIter:   100,
		Factor:    1.6,
		MaxExpand: 60,
		Step:      1e-6,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.XTol <= 0 {
		o.XTol = d.XTol
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.Factor <= 1 {
		o.Factor = d.Factor
	}
	if o.MaxExpand <= 0 {
		o.MaxExpand = d.MaxExpand
	}
	if o.Step <= 0 {
		o.Step = d.Step
	}
	return o
}

// Default returns Newton backed by Brent.
func Default(o Options) Finder {
	return Chain{Newton{Options: o}, Brent{Options: o}}
}

// Chain tries each finder in order and returns the first root found.
type Chain []Finder

func (c Chain) Solve(f Func, guess float64) (float64, error) {
	if len(c) == 0 {
		return 0, fmt.Errorf("%w: empty chain", ErrNonConvergent)
	}
	errs := make([]error, 0, len(c))
	for _, finder := range c {
		x, err := finder.Solve(f, guess)
		if err == nil {
			return x, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 1 {
		return 0, errs[0]
	}
	return 0, fmt.Errorf("%w: %w", ErrNonConvergent, errors.Join(errs...))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func converged(dx, x, xtol float64) bool {
	return math.Abs(dx) <= xtol*math.Max(1, math.Abs(x))
}
