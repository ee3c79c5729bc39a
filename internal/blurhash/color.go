package blurhash

import "math"

// srgbToLinear is filled at init; 256 × 8 bytes = 2 KB.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		v := float64(i) / 255
		if v <= 0.04045 {
			srgbToLinear[i] = v / 12.92
		} else {
			srgbToLinear[i] = math.Pow((v+0.055)/1.055, 2.4)
		}
	}
}

// SRGBToLinear converts a gamma-encoded channel to linear light in [0, 1].
func SRGBToLinear(b uint8) float64 {
	return srgbToLinear[b]
}

// LinearToSRGB converts linear light back to an 8-bit gamma-encoded
// channel. Input is clamped to [0, 1].
func LinearToSRGB(v float64) uint8 {
	v = clamp(v, 0, 1)
	var s float64
	if v <= 0.0031308 {
		s = v * 12.92 * 255
	} else {
		s = (1.055*math.Pow(v, 1/2.4) - 0.055) * 255
	}
	return uint8(clamp(math.Floor(s+0.5), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// signPow raises |v| to exp and restores the sign of v.
func signPow(v, exp float64) float64 {
	return math.Copysign(math.Pow(math.Abs(v), exp), v)
}
