package fluid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixtureDescriptor(t *testing.T) {
	f, err := Mixture(Component{CO2, 0.9743}, Component{Water, 0.0257})
	require.NoError(t, err)
	assert.Equal(t, "CO2[0.974]&water[0.026]", f.String())
	assert.False(t, f.IsPure())
	assert.Equal(t, 0.974, f.Fraction(CO2))
	assert.Equal(t, 0.0, f.Fraction(Oxygen))

	pure, err := Mixture(Component{CO2, 0.9996}, Component{Water, 0.0004})
	require.NoError(t, err)
	assert.True(t, pure.IsPure())
	assert.Equal(t, "CO2", pure.String())
}

func TestMixtureRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		cs   []Component
	}{
		{"empty", nil},
		{"unknown substance", []Component{{"argon", 1}}},
		{"short sum", []Component{{CO2, 0.5}, {Water, 0.2}}},
		{"negative", []Component{{CO2, 1.2}, {Water, -0.2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Mixture(tc.cs...)
			assert.ErrorIs(t, err, ErrInvalidFluid)
		})
	}
}

func TestIdealGasReferenceValues(t *testing.T) {
	g := NewIdealGas()
	co2 := Pure(CO2)

	h, err := g.Props(Enthalpy, Temperature, 298.15, Pressure, 101325, co2)
	require.NoError(t, err)
	assert.InDelta(t, 0, h, 1e-6)

	d, err := g.Props(Density, Temperature, 300, Pressure, 1e5, co2)
	require.NoError(t, err)
	assert.InDelta(t, 1.76437, d, 1e-4)

	cp, err := g.Props(HeatCapacity, Pressure, 1e5, Temperature, 300, co2)
	require.NoError(t, err)
	assert.InDelta(t, 845.7, cp, 1)

	s, err := g.Props(Entropy, Temperature, 298.15, Pressure, 101325, co2)
	require.NoError(t, err)
	assert.InDelta(t, 213.79/0.0440095, s, 15)
}

func TestIdealGasContinuousAcrossRanges(t *testing.T) {
	g := NewIdealGas()
	co2 := Pure(CO2)
	lo, err := g.Props(Enthalpy, Temperature, 1199.999, Pressure, 1e6, co2)
	require.NoError(t, err)
	hi, err := g.Props(Enthalpy, Temperature, 1200.001, Pressure, 1e6, co2)
	require.NoError(t, err)
	assert.InDelta(t, lo, hi, 5)
}

func TestIdealGasInversion(t *testing.T) {
	g := NewIdealGas()
	mix, err := Mixture(Component{CO2, 0.974}, Component{Water, 0.026})
	require.NoError(t, err)

	for _, f := range []Fluid{Pure(CO2), mix} {
		for _, T := range []float64{310, 520, 900, 1073, 1500} {
			h, err := g.Props(Enthalpy, Temperature, T, Pressure, 16e6, f)
			require.NoError(t, err)
			back, err := g.Props(Temperature, Enthalpy, h, Pressure, 16e6, f)
			require.NoError(t, err)
			assert.InDelta(t, T, back, 1e-6, "H inversion %s at %v K", f, T)

			s, err := g.Props(Entropy, Temperature, T, Pressure, 8e6, f)
			require.NoError(t, err)
			back, err = g.Props(Temperature, Entropy, s, Pressure, 8e6, f)
			require.NoError(t, err)
			assert.InDelta(t, T, back, 1e-6, "S inversion %s at %v K", f, T)
		}
	}
}

func TestIdealGasNotResolvable(t *testing.T) {
	g := NewIdealGas()
	co2 := Pure(CO2)
	tests := []struct {
		name     string
		in1      Property
		v1       float64
		in2      Property
		v2       float64
		fluid    Fluid
		wantBase error
	}{
		{"too cold", Temperature, 150, Pressure, 1e6, co2, nil},
		{"too hot", Temperature, 3500, Pressure, 1e6, co2, nil},
		{"negative pressure", Temperature, 500, Pressure, -1, co2, nil},
		{"unsupported pair", Temperature, 500, Density, 10, co2, nil},
		{"enthalpy out of range", Enthalpy, 1e9, Pressure, 1e6, co2, nil},
		{"bad fluid", Temperature, 500, Pressure, 1e6, Fluid{}, ErrInvalidFluid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Props(Enthalpy, tc.in1, tc.v1, tc.in2, tc.v2, tc.fluid)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotResolvable)
			if tc.wantBase != nil {
				assert.ErrorIs(t, err, tc.wantBase)
			}
		})
	}
}

func TestIdealGasPhase(t *testing.T) {
	g := NewIdealGas()
	tests := []struct {
		T, P float64
		want Phase
	}{
		{310, 8e6, Supercritical},
		{310, 5e6, SupercriticalGas},
		{280, 8e6, SupercriticalLiquid},
		{280, 1e5, Gas},
	}
	for _, tc := range tests {
		v, err := g.Props(PhaseCode, Temperature, tc.T, Pressure, tc.P, Pure(CO2))
		require.NoError(t, err)
		assert.Equal(t, tc.want, Phase(v), "T=%v P=%v", tc.T, tc.P)
	}
	assert.Equal(t, "supercritical", Supercritical.String())
}

type countingBackend struct {
	calls int
	fail  bool
}

func (c *countingBackend) Props(out Property, in1 Property, v1 float64, in2 Property, v2 float64, f Fluid) (float64, error) {
	c.calls++
	if c.fail {
		return 0, errors.New("down")
	}
	return v1 + v2, nil
}

func TestMemo(t *testing.T) {
	inner := &countingBackend{}
	m := NewMemo(inner)

	for i := 0; i < 3; i++ {
		v, err := m.Props(Enthalpy, Temperature, 300, Pressure, 1e5, Pure(CO2))
		require.NoError(t, err)
		assert.Equal(t, 300+1e5, v)
	}
	_, err := m.Props(Enthalpy, Temperature, 300, Pressure, 1e5, Pure(Water))
	require.NoError(t, err)

	hits, misses := m.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(2), misses)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, m.Len())

	m.Reset()
	inner.fail = true
	_, err = m.Props(Enthalpy, Temperature, 300, Pressure, 1e5, Pure(CO2))
	require.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestMemoBounded(t *testing.T) {
	inner := &countingBackend{}
	m := NewMemoSize(inner, 4)

	for i := 0; i < 10; i++ {
		_, err := m.Props(Enthalpy, Temperature, 300+float64(i), Pressure, 1e5, Pure(CO2))
		require.NoError(t, err)
		assert.LessOrEqual(t, m.Len(), 4)
	}
	assert.Equal(t, 10, inner.calls)
	assert.Equal(t, uint64(2), m.Flushes())
	assert.Equal(t, 2, m.Len())

	// the latest entries survive a flush
	_, err := m.Props(Enthalpy, Temperature, 309, Pressure, 1e5, Pure(CO2))
	require.NoError(t, err)
	assert.Equal(t, 10, inner.calls)

	assert.Equal(t, DefaultMemoSize, NewMemoSize(inner, 0).size)
}

func TestMolarMass(t *testing.T) {
	m, err := MolarMass(CO2)
	require.NoError(t, err)
	assert.InDelta(t, 0.0440095, m, 1e-9)

	_, err = MolarMass("argon")
	assert.ErrorIs(t, err, ErrInvalidFluid)
}
