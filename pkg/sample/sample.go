package sample

import "time"

// Sample is the result of one processing cycle: derived metrics plus the
// filtered readings they were computed from.
type Sample struct {
	Timestamp        time.Time
	Temperature      float64 // Thermistor temperature (C), meaningful only when TemperatureValid
	TemperatureValid bool
	Light            uint8 // Ambient light intensity (0-100 %)
	Indicator        bool  // Status LED state after this cycle

	// Filtered readings, same scale as the raw converter counts.
	Reference  int32
	Thermistor int32
	LightCount int32
}

// Metrics are the engineering-unit values derived from filtered readings.
type Metrics struct {
	Temperature    float64
	TemperatureErr error // Non-nil when the bridge readings cannot be converted
	Light          uint8
}

// Derive converts filtered thermistor, reference and light readings into metrics.
func Derive(thermistor, reference, light int32, therm ThermistorConfig, als LightConfig) Metrics {
	t, err := TemperatureFromCounts(thermistor, reference, therm)
	return Metrics{
		Temperature:    t,
		TemperatureErr: err,
		Light:          LightIntensityFromCounts(light, als),
	}
}
