package rootfind

import (
	"fmt"
	"math"
)

const eps = 2.220446049250313e-16

// Brent widens a bracket around the guess until f changes sign and then
// runs Brent's method inside it. For a positive guess the bracket grows
// geometrically and never leaves x > 0.
type Brent struct {
	Options
}

func (b Brent) Solve(f Func, guess float64) (float64, error) {
	o := b.Options.withDefaults()
	if !finite(guess) {
		return 0, fmt.Errorf("%w: guess %v", ErrNonConvergent, guess)
	}
	fg, err := f(guess)
	if err != nil {
		return 0, err
	}
	if fg == 0 {
		return guess, nil
	}

	lo, flo, hi, fhi, err := expand(f, guess, fg, o)
	if err != nil {
		return 0, err
	}
	return brent(f, lo, flo, hi, fhi, o)
}

// Bracketed runs Brent's method on [lo, hi]; f(lo) and f(hi) must differ in
// sign.
func (b Brent) Bracketed(f Func, lo, hi float64) (float64, error) {
	o := b.Options.withDefaults()
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	return brent(f, lo, flo, hi, fhi, o)
}

// expand walks outward from the guess in both directions. A direction whose
// residual fails is abandoned; the other keeps going.
func expand(f Func, guess, fg float64, o Options) (lo, flo, hi, fhi float64, err error) {
	step := func(k int, up bool) float64 {
		if guess > 0 {
			s := math.Pow(o.Factor, float64(k))
			if up {
				return guess * s
			}
			return guess / s
		}
		d := 0.1 * math.Max(1, math.Abs(guess)) * math.Pow(o.Factor, float64(k-1))
		if up {
			return guess + d
		}
		return guess - d
	}

	type side struct {
		x, fx float64
		dead  bool
	}
	up := side{x: guess, fx: fg}
	down := side{x: guess, fx: fg}

	for k := 1; k <= o.MaxExpand; k++ {
		if up.dead && down.dead {
			break
		}
		if !up.dead {
			x := step(k, true)
			fx, ferr := f(x)
			if ferr != nil || !finite(fx) {
				up.dead = true
			} else if fx == 0 || math.Signbit(fx) != math.Signbit(up.fx) {
				return up.x, up.fx, x, fx, nil
			} else {
				up.x, up.fx = x, fx
			}
		}
		if !down.dead {
			x := step(k, false)
			fx, ferr := f(x)
			if ferr != nil || !finite(fx) {
				down.dead = true
			} else if fx == 0 || math.Signbit(fx) != math.Signbit(down.fx) {
				return x, fx, down.x, down.fx, nil
			} else {
				down.x, down.fx = x, fx
			}
		}
	}
	return 0, 0, 0, 0, fmt.Errorf("%w around %g", ErrNoBracket, guess)
}

func brent(f Func, a, fa, b, fb float64, o Options) (float64, error) {
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, fmt.Errorf("%w in [%g, %g]", ErrNoBracket, a, b)
	}

	c, fc := b, fb
	d := b - a
	e := d
	var err error
	for i := 0; i < o.MaxIter; i++ {
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*eps*math.Abs(b) + 0.5*o.XTol*math.Max(1, math.Abs(b))
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol || fb == 0 || (o.FTol > 0 && math.Abs(fb) <= o.FTol) {
			return b, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			// inverse quadratic interpolation, secant when a == c
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*m*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = m
			}
		} else {
			d = m
			e = m
		}

		a, fa = b, fb
		switch {
		case math.Abs(d) > tol:
			b += d
		case m > 0:
			b += tol
		default:
			b -= tol
		}
		fb, err = f(b)
		if err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("%w: brent after %d iterations", ErrNonConvergent, o.MaxIter)
}
