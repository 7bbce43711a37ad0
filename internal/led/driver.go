package led

import "github.com/coreman2200/funtimes-blinky/internal/render"

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N with N no
	// larger than the strip capacity; pixels past N are turned off.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Encode appends px to dst as packed RGB triples.
func Encode(dst []byte, px []render.Color) []byte {
	for _, c := range px {
		dst = append(dst, c.R, c.G, c.B)
	}
	return dst
}
