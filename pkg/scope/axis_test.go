package scope

import (
	"testing"
	"time"

	"github.com/itohio/lpsense/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(sec int, temp float64, valid, led bool) sample.Sample {
	return sample.Sample{
		Timestamp:        t0.Add(time.Duration(sec) * time.Second),
		Temperature:      temp,
		TemperatureValid: valid,
		Indicator:        led,
	}
}

func TestTemperatureRange(t *testing.T) {
	lo, hi := temperatureRange([]sample.Sample{
		at(0, 20, true, false),
		at(1, 100, false, false),
		at(2, 30, true, false),
	})
	assert.InDelta(t, 19, lo, 1e-9)
	assert.InDelta(t, 31, hi, 1e-9)
}

func TestTemperatureRange_Flat(t *testing.T) {
	lo, hi := temperatureRange([]sample.Sample{at(0, 25, true, false), at(1, 25, true, false)})
	assert.InDelta(t, 24.4, lo, 1e-9)
	assert.InDelta(t, 25.6, hi, 1e-9)
}

func TestTemperatureRange_NoValid(t *testing.T) {
	lo, hi := temperatureRange([]sample.Sample{at(0, 0, false, false)})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 50.0, hi)
}

func TestTimeRange(t *testing.T) {
	from, to := timeRange(nil, time.Minute, t0)
	assert.Equal(t, t0, from)
	assert.Equal(t, t0.Add(time.Minute), to)

	samples := []sample.Sample{at(0, 0, true, false), at(10, 0, true, false)}
	from, to = timeRange(samples, time.Minute, t0)
	assert.Equal(t, t0, from)
	assert.Equal(t, t0.Add(time.Minute), to)

	from, to = timeRange(samples, 5*time.Second, t0)
	assert.Equal(t, t0, from)
	assert.Equal(t, t0.Add(10*time.Second), to)
}

func TestIndicatorSpans(t *testing.T) {
	spans := indicatorSpans([]sample.Sample{
		at(0, 0, true, false),
		at(1, 0, true, true),
		at(2, 0, true, true),
		at(3, 0, true, false),
		at(4, 0, true, true),
	})
	require.Len(t, spans, 2)
	assert.Equal(t, span{from: t0.Add(time.Second), to: t0.Add(3 * time.Second)}, spans[0])
	assert.Equal(t, span{from: t0.Add(4 * time.Second), to: t0.Add(4 * time.Second)}, spans[1])

	assert.Empty(t, indicatorSpans(nil))
}

func TestProject(t *testing.T) {
	assert.Equal(t, float32(100), project(0, 0, 100, 100))
	assert.Equal(t, float32(0), project(100, 0, 100, 100))
	assert.Equal(t, float32(50), project(5, 5, 5, 100))

	assert.Equal(t, float32(50), projectTime(t0.Add(5*time.Second), t0, t0.Add(10*time.Second), 100))
	assert.Equal(t, float32(0), projectTime(t0, t0, t0, 100))
}
