package utils

// ClampFloat32 limits v to [lo, hi].
func ClampFloat32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PeakFloat32 returns the largest absolute sample value.
func PeakFloat32(values []float32) float32 {
	var peak float32
	for _, v := range values {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
