package sample

// LightConfig describes the ambient light conversion and the indicator thresholds.
type LightConfig struct {
	Offset        int16  `yaml:"offset"`         // Lowest observed percentage, subtracted from the result
	LowThreshold  uint8  `yaml:"low_threshold"`  // Indicator turns on below this
	HighThreshold uint8  `yaml:"high_threshold"` // Indicator turns off above this
	DarkRaw       uint16 `yaml:"dark_raw"`       // First reading at or above this is treated as fully dark
	DarkValue     int32  `yaml:"dark_value"`     // Value used instead of a fully dark first reading
	ScaleShift    uint8  `yaml:"scale_shift"`    // count*100 >> ScaleShift; 10 treats the range as 10-bit
}

// DefaultLightConfig returns the board defaults.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Offset:        20,
		LowThreshold:  45,
		HighThreshold: 55,
		DarkRaw:       0xFFF0,
		DarkValue:     0,
		ScaleShift:    10,
	}
}

// LightIntensityFromCounts converts the filtered light reading into percent.
//
// The scale is ((count*100) >> ScaleShift) - Offset, narrowed to 16 bits and
// clamped into [0, 100]. With ScaleShift = 10 the converter range is treated as
// 10-bit regardless of its actual resolution.
func LightIntensityFromCounts(count int32, cfg LightConfig) uint8 {
	if count < 0 {
		count = 0
	}

	level := int16(((count * 100) >> cfg.ScaleShift) - int32(cfg.Offset))

	if level > 100 {
		level = 100
	}
	if level < 0 {
		level = 0
	}
	return uint8(level)
}

// CountsForLight is the inverse of LightIntensityFromCounts for percent in [0, 100].
func CountsForLight(percent int, cfg LightConfig) int32 {
	if percent < 0 {
		percent = 0
	}
	n := int32(percent) + int32(cfg.Offset)
	// Round up so the forward conversion lands on percent.
	return (n<<cfg.ScaleShift + 99) / 100
}

// Indicator applies the hysteresis band: on below LowThreshold, off above
// HighThreshold, otherwise unchanged.
func (c LightConfig) Indicator(prev bool, light uint8) bool {
	switch {
	case light < c.LowThreshold:
		return true
	case light > c.HighThreshold:
		return false
	}
	return prev
}
