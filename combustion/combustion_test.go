package combustion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T) *Model {
	t.Helper()
	m, err := New(nil)
	require.NoError(t, err)
	return m
}

func TestPolynomialEval(t *testing.T) {
	p := Polynomial{1, 2, 3}
	assert.Equal(t, 1.0, p.Eval(0))
	assert.Equal(t, 6.0, p.Eval(1))
	assert.Equal(t, 17.0, p.Eval(2))
	assert.Equal(t, 0.0, Polynomial{}.Eval(5))
}

func TestCompositionSums(t *testing.T) {
	m := newModel(t)
	for _, k := range []float64{0.1, 1, 6.7, 10, 25, 100} {
		c, err := m.Composition(k)
		require.NoError(t, err)

		p := c.Products
		assert.InDelta(t, 1, p.CO2.Mole+p.H2O.Mole, 1e-12, "k=%v", k)
		assert.InDelta(t, 1, p.CO2.Mass+p.H2O.Mass, 1e-12, "k=%v", k)
		assert.InDelta(t, k/(k+1), p.CO2Recyc.Mole, 1e-12, "k=%v", k)
		assert.Less(t, p.CO2Recyc.Mole, p.CO2.Mole)

		in := c.Inlet
		assert.InDelta(t, 1, in.CH4.Mole+in.O2.Mole+in.CO2.Mole, 1e-12, "k=%v", k)
		assert.InDelta(t, 1, in.CH4.Mass+in.O2.Mass+in.CO2.Mass, 1e-12, "k=%v", k)

		for _, s := range []Species{p.CO2, p.H2O, p.CO2Recyc, in.CH4, in.O2, in.CO2} {
			assert.GreaterOrEqual(t, s.Mole, 0.0)
			assert.LessOrEqual(t, s.Mole, 1.0)
			assert.GreaterOrEqual(t, s.Mass, 0.0)
			assert.LessOrEqual(t, s.Mass, 1.0)
		}
	}
}

func TestCompositionVolumes(t *testing.T) {
	m := newModel(t)
	c, err := m.Composition(10)
	require.NoError(t, err)
	assert.Equal(t, 33.0, c.Volumes.Gas)
	assert.Equal(t, 30.0, c.Volumes.CO2Recyc)
	assert.Equal(t, 31.0, c.Volumes.CO2)
	assert.InDelta(t, 31.0/33, c.Products.CO2.Mole, 1e-15)
	assert.InDelta(t, 2.0/33, c.Products.H2O.Mole, 1e-15)
	// CO2 is heavier than water, so its mass share exceeds its mole share
	assert.Greater(t, c.Products.CO2.Mass, c.Products.CO2.Mole)
}

func TestCompositionRejectsBadRatio(t *testing.T) {
	m := newModel(t)
	for _, k := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := m.Composition(k)
		assert.ErrorIs(t, err, ErrInvalidComposition, "k=%v", k)
	}
	_, err := m.FlameTemperature(0, 900)
	assert.ErrorIs(t, err, ErrInvalidComposition)
}

func TestRecirculationRatioRoundTrip(t *testing.T) {
	m := newModel(t)
	const tRecyc = 900.0
	for _, tFlame := range []float64{1073, 1173, 1273, 1373, 1473} {
		k, err := m.RecirculationRatio(tFlame, tRecyc)
		require.NoError(t, err, "flame %v K", tFlame)
		assert.Greater(t, k, 0.0)

		back, err := m.FlameTemperature(k, tRecyc)
		require.NoError(t, err)
		assert.InDelta(t, tFlame, back, 1e-6, "flame %v K", tFlame)

		r, err := m.FlameResidual(tFlame, k, tRecyc)
		require.NoError(t, err)
		assert.InDelta(t, 0, r, 1e-6)
	}
}

func TestRecirculationRatioRange(t *testing.T) {
	m := newModel(t)
	hot, err := m.RecirculationRatio(1473, 900)
	require.NoError(t, err)
	cold, err := m.RecirculationRatio(1073, 900)
	require.NoError(t, err)

	// a cooler combustor needs more diluent
	assert.Greater(t, cold, hot)
	assert.InDelta(t, 25, cold, 3)
	assert.InDelta(t, 6.7, hot, 1)
}

// Recirculated CO2 brings sensible heat into the combustor, so holding the
// flame temperature requires more of it as it gets hotter.
func TestRecirculationRatioSensitivity(t *testing.T) {
	m := newModel(t)
	prev := 0.0
	for _, tRecyc := range []float64{700, 800, 900, 1000} {
		k, err := m.RecirculationRatio(1073, tRecyc)
		require.NoError(t, err)
		assert.Greater(t, k, prev, "recyc %v K", tRecyc)
		prev = k
	}
}

func TestRecirculationRatioValidation(t *testing.T) {
	m := newModel(t)
	tests := []struct {
		name           string
		tFlame, tRecyc float64
	}{
		{"flame below recyc", 800, 900},
		{"flame equals recyc", 900, 900},
		{"zero recyc", 1073, 0},
		{"nan flame", math.NaN(), 900},
		{"inf flame", math.Inf(1), 900},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.RecirculationRatio(tc.tFlame, tc.tRecyc)
			assert.ErrorIs(t, err, ErrInvalidComposition)
		})
	}
}

func TestFlameResidualSign(t *testing.T) {
	m := newModel(t)
	k, err := m.RecirculationRatio(1273, 900)
	require.NoError(t, err)

	below, err := m.FlameResidual(1223, k, 900)
	require.NoError(t, err)
	above, err := m.FlameResidual(1323, k, 900)
	require.NoError(t, err)
	assert.Positive(t, below)
	assert.Negative(t, above)

	// kelvin in, kelvin-sized residual out
	at, err := m.FlameResidual(1273, k, 900)
	require.NoError(t, err)
	assert.InDelta(t, 0, at, 1e-6)

	_, err = m.FlameResidual(1273, 0, 900)
	assert.ErrorIs(t, err, ErrInvalidComposition)
}
