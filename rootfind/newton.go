package rootfind

import (
	"fmt"
	"math"
)

// Newton iterates x -= f(x)/f'(x) with a forward-difference derivative.
type Newton struct {
	Options
}

func (n Newton) Solve(f Func, guess float64) (float64, error) {
	o := n.Options.withDefaults()
	if !finite(guess) {
		return 0, fmt.Errorf("%w: guess %v", ErrNonConvergent, guess)
	}

	x := guess
	for i := 0; i < o.MaxIter; i++ {
		fx, err := f(x)
		if err != nil {
			return 0, err
		}
		if fx == 0 || (o.FTol > 0 && math.Abs(fx) <= o.FTol) {
			return x, nil
		}

		h := o.Step * math.Max(1, math.Abs(x))
		fh, err := f(x + h)
		if err != nil {
			return 0, err
		}
		df := (fh - fx) / h
		if df == 0 || !finite(df) {
			return 0, fmt.Errorf("%w: zero derivative at x=%g", ErrNonConvergent, x)
		}

		dx := fx / df
		x -= dx
		if !finite(x) {
			return 0, fmt.Errorf("%w: iterate diverged", ErrNonConvergent)
		}
		if converged(dx, x, o.XTol) {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w: newton after %d iterations", ErrNonConvergent, o.MaxIter)
}
