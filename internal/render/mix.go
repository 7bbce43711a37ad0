package render

import "math"

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Per-channel linear interpolation in sRGB space; no gamma assumed.
// Every output channel lies between its a and b values inclusive.
func Mix(dst, a, b []Color, alpha float64) {
	n := len(dst)
	if len(a) < n {
		n = len(a)
	}
	if len(b) < n {
		n = len(b)
	}
	if alpha <= 0 {
		copy(dst[:n], a[:n])
		return
	}
	if alpha >= 1 {
		copy(dst[:n], b[:n])
		return
	}
	for i := 0; i < n; i++ {
		dst[i].R = lerp8(a[i].R, b[i].R, alpha)
		dst[i].G = lerp8(a[i].G, b[i].G, alpha)
		dst[i].B = lerp8(a[i].B, b[i].B, alpha)
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(v))
}
