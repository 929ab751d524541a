package sample

import "time"

// Downsample reduces samples to at most maxPoints by decimation for display.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
func Downsample(dst []Sample, samples []Sample, maxPoints int) []Sample {
	if len(samples) <= maxPoints {
		if cap(dst) >= len(samples) {
			dst = dst[:len(samples)]
			copy(dst, samples)
			return dst
		}
		result := make([]Sample, len(samples))
		copy(result, samples)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Sample, 0, maxPoints)
	}

	step := float64(len(samples)) / float64(maxPoints)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(samples) {
			dst = append(dst, samples[idx])
		}
	}

	return dst
}

// Trim drops samples older than window relative to the newest one.
// Samples must be ordered oldest first. The returned slice aliases samples.
func Trim(samples []Sample, window time.Duration) []Sample {
	if len(samples) == 0 || window <= 0 {
		return samples
	}
	cutoff := samples[len(samples)-1].Timestamp.Add(-window)
	for i, s := range samples {
		if s.Timestamp.After(cutoff) {
			return samples[i:]
		}
	}
	return samples[len(samples)-1:]
}
