package scope

import (
	"time"

	"github.com/itohio/lpsense/pkg/sample"
)

// minTemperatureSpan keeps a flat trace from filling the plot with noise.
const minTemperatureSpan = 1.0

// span is a time interval during which the indicator was lit.
type span struct {
	from, to time.Time
}

// temperatureRange returns the Y range of valid temperatures with a 10% margin.
func temperatureRange(samples []sample.Sample) (lo, hi float64) {
	found := false
	for _, s := range samples {
		if !s.TemperatureValid {
			continue
		}
		if !found {
			lo, hi = s.Temperature, s.Temperature
			found = true
			continue
		}
		lo = min(lo, s.Temperature)
		hi = max(hi, s.Temperature)
	}
	if !found {
		return 0, 50
	}

	if hi-lo < minTemperatureSpan {
		mid := (hi + lo) / 2
		lo = mid - minTemperatureSpan/2
		hi = mid + minTemperatureSpan/2
	}
	margin := (hi - lo) * 0.1
	return lo - margin, hi + margin
}

// timeRange returns the X range, at least window wide.
func timeRange(samples []sample.Sample, window time.Duration, now time.Time) (from, to time.Time) {
	if len(samples) == 0 {
		return now, now.Add(window)
	}
	from = samples[0].Timestamp
	to = samples[len(samples)-1].Timestamp
	if to.Sub(from) < window {
		to = from.Add(window)
	}
	return from, to
}

// indicatorSpans collapses consecutive lit samples into intervals.
func indicatorSpans(samples []sample.Sample) []span {
	var spans []span
	lit := false
	for _, s := range samples {
		switch {
		case s.Indicator && !lit:
			spans = append(spans, span{from: s.Timestamp, to: s.Timestamp})
			lit = true
		case s.Indicator:
			spans[len(spans)-1].to = s.Timestamp
		case lit:
			spans[len(spans)-1].to = s.Timestamp
			lit = false
		}
	}
	return spans
}

// project maps v within [lo, hi] to a pixel offset along length, flipped so
// that larger values are drawn higher.
func project(v, lo, hi float64, length float32) float32 {
	if hi == lo {
		return length / 2
	}
	return length - float32((v-lo)/(hi-lo))*length
}

// projectTime maps t within [from, to] to a pixel offset along length.
func projectTime(t, from, to time.Time, length float32) float32 {
	total := to.Sub(from).Seconds()
	if total <= 0 {
		return 0
	}
	return float32(t.Sub(from).Seconds()/total) * length
}
