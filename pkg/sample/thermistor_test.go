package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRInfinity(t *testing.T) {
	cfg := DefaultThermistorConfig()
	assert.InDelta(t, 0.1192855, float64(cfg.RInfinity()), 1e-6)
}

func TestTemperatureFromCounts(t *testing.T) {
	cfg := DefaultThermistorConfig()

	tests := []struct {
		name  string
		therm int32
		ref   int32
		want  float64
		delta float64
	}{
		{
			name:  "equal legs is rated temperature",
			therm: 2048,
			ref:   2048,
			want:  25.0,
			delta: 0.05,
		},
		{
			name:  "small equal legs",
			therm: 1,
			ref:   1,
			want:  25.0,
			delta: 0.05,
		},
		{
			name:  "thermistor at half resistance is warmer",
			therm: 1024,
			ref:   2048,
			want:  44.4, // B model at R = 5k
			delta: 0.5,
		},
		{
			name:  "thermistor at double resistance is colder",
			therm: 4096,
			ref:   2048,
			want:  7.8, // B model at R = 20k
			delta: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TemperatureFromCounts(tt.therm, tt.ref, cfg)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestTemperatureFromCounts_Faults(t *testing.T) {
	cfg := DefaultThermistorConfig()

	_, err := TemperatureFromCounts(2048, 0, cfg)
	assert.ErrorIs(t, err, ErrReferenceOpen)

	_, err = TemperatureFromCounts(2048, -5, cfg)
	assert.ErrorIs(t, err, ErrReferenceOpen)

	_, err = TemperatureFromCounts(0, 2048, cfg)
	assert.ErrorIs(t, err, ErrThermistorShort)

	_, err = TemperatureFromCounts(-1, 2048, cfg)
	assert.ErrorIs(t, err, ErrThermistorShort)
}

func TestTemperatureFromCounts_Monotonic(t *testing.T) {
	cfg := DefaultThermistorConfig()

	prev, err := TemperatureFromCounts(500, 2048, cfg)
	require.NoError(t, err)
	for therm := int32(600); therm <= 8000; therm += 100 {
		got, err := TemperatureFromCounts(therm, 2048, cfg)
		require.NoError(t, err)
		assert.Less(t, got, prev, "NTC: higher resistance must read colder (therm=%d)", therm)
		prev = got
	}
}

func TestCountsForTemperature_RoundTrip(t *testing.T) {
	cfg := DefaultThermistorConfig()

	for _, c := range []float64{-10, 0, 15, 25, 40, 60} {
		counts := CountsForTemperature(c, 2048, cfg)
		got, err := TemperatureFromCounts(counts, 2048, cfg)
		require.NoError(t, err)
		assert.InDelta(t, c, got, 0.5, "temperature %v", c)
	}

	assert.Equal(t, int32(0), CountsForTemperature(-300, 2048, cfg))
}
