package render

import (
	"math"
	"time"
)

// Sin8 maps an 8-bit angle to an 8-bit sine centred on 128.
func Sin8(theta uint8) uint8 {
	return uint8(math.Round(127.5 + 127.5*math.Sin(float64(theta)*2*math.Pi/256)))
}

func Cos8(theta uint8) uint8 { return Sin8(theta + 64) }

// Triwave8 is a triangle wave over one 8-bit period.
func Triwave8(x uint8) uint8 {
	if x&0x80 != 0 {
		x = 255 - x
	}
	return x << 1
}

// Beat8 returns a sawtooth that wraps bpm times per minute.
func Beat8(bpm float64, t time.Duration) uint8 {
	return uint8(int64(t.Seconds()*bpm/60*256) & 0xFF)
}

// Beatsin8 oscillates between lo and hi bpm times per minute.
func Beatsin8(bpm float64, lo, hi uint8, t time.Duration, phase uint8) uint8 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + Scale8(Sin8(Beat8(bpm, t)+phase), hi-lo)
}

// Beatsin16 is Beatsin8 over an int range, used for pixel positions.
func Beatsin16(bpm float64, lo, hi int, t time.Duration, phase float64) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	s := (math.Sin(2*math.Pi*(t.Seconds()*bpm/60+phase)) + 1) / 2
	return lo + int(math.Round(s*float64(hi-lo)))
}
