package rootfind

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pure(g func(float64) float64) Func {
	return func(x float64) (float64, error) { return g(x), nil }
}

func TestNewtonSqrt2(t *testing.T) {
	x, err := Newton{}.Solve(pure(func(x float64) float64 { return x*x - 2 }), 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, x, 1e-9)
}

func TestNewtonNoRealRoot(t *testing.T) {
	_, err := Newton{}.Solve(pure(func(x float64) float64 { return x*x + 1 }), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonConvergent)
}

func TestNewtonPropagatesResidualError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Newton{}.Solve(func(x float64) (float64, error) { return 0, boom }, 1)
	assert.ErrorIs(t, err, boom)
}

func TestBrentExpandsBracket(t *testing.T) {
	tests := []struct {
		name  string
		f     func(float64) float64
		guess float64
		root  float64
	}{
		{"cosine fixed point", func(x float64) float64 { return math.Cos(x) - x }, 0.5, 0.7390851332151607},
		{"far root above guess", func(x float64) float64 { return x - 1000 }, 1, 1000},
		{"far root below guess", func(x float64) float64 { return math.Log(x) + 5 }, 500, math.Exp(-5)},
		{"non-positive guess", func(x float64) float64 { return x + 3 }, 0, -3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, err := Brent{}.Solve(pure(tc.f), tc.guess)
			require.NoError(t, err)
			assert.InDelta(t, tc.root, x, 1e-8*math.Max(1, math.Abs(tc.root)))
		})
	}
}

func TestBrentNoSignChange(t *testing.T) {
	_, err := Brent{Options: Options{MaxExpand: 10}}.Solve(pure(func(x float64) float64 { return x*x + 1 }), 1)
	assert.ErrorIs(t, err, ErrNoBracket)
	assert.ErrorIs(t, err, ErrNonConvergent)
}

func TestBrentBracketed(t *testing.T) {
	x, err := Brent{}.Bracketed(pure(func(x float64) float64 { return x*x*x - x - 2 }), 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.5213797068045676, x, 1e-9)

	_, err = Brent{}.Bracketed(pure(func(x float64) float64 { return x }), 1, 2)
	assert.ErrorIs(t, err, ErrNoBracket)
}

func TestBrentSkipsFailingDirection(t *testing.T) {
	// residual undefined below zero, root above the guess
	f := func(x float64) (float64, error) {
		if x < 0.5 {
			return 0, errors.New("out of range")
		}
		return x - 40, nil
	}
	x, err := Brent{}.Solve(f, 1)
	require.NoError(t, err)
	assert.InDelta(t, 40, x, 1e-8)
}

func TestChainFallsBack(t *testing.T) {
	// newton walks into the undefined region, brent brackets around it
	calls := 0
	f := func(x float64) (float64, error) {
		calls++
		if x <= 0 {
			return 0, errors.New("undefined")
		}
		return math.Atan(x - 10), nil
	}
	x, err := Default(DefaultOptions()).Solve(f, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10, x, 1e-8)
	assert.Greater(t, calls, 2)
}

func TestChainReportsEveryFailure(t *testing.T) {
	_, err := Default(Options{MaxIter: 5, MaxExpand: 3}).Solve(pure(func(x float64) float64 { return x*x + 1 }), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonConvergent)
	assert.ErrorIs(t, err, ErrNoBracket)
}
