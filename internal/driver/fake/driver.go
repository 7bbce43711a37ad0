package fake

import (
	"github.com/rs/zerolog"
)

// Driver records frames instead of lighting LEDs, for headless runs and tests.
type Driver struct {
	Count  int
	Last   []byte
	Closed bool
	// Err is returned from Write when set.
	Err error
	// Log, when set, receives a compact summary of every frame.
	Log *zerolog.Logger
}

func (d *Driver) Write(rgb []byte) error {
	if d.Err != nil {
		return d.Err
	}
	d.Count++
	d.Last = append(d.Last[:0], rgb...)
	if d.Log != nil {
		r, g, b := d.Average()
		ev := d.Log.Debug().Int("frame", d.Count).Int("pixels", len(rgb)/3)
		ev.Floats64("avg", []float64{r, g, b}).Msg("frame")
	}
	return nil
}

func (d *Driver) Close() error {
	d.Closed = true
	return nil
}

// Average is the mean channel value of the last frame.
func (d *Driver) Average() (r, g, b float64) {
	n := len(d.Last) / 3
	if n == 0 {
		return 0, 0, 0
	}
	for i := 0; i < n; i++ {
		r += float64(d.Last[3*i])
		g += float64(d.Last[3*i+1])
		b += float64(d.Last[3*i+2])
	}
	return r / float64(n), g / float64(n), b / float64(n)
}

// Pixel returns pixel i of the last frame.
func (d *Driver) Pixel(i int) (r, g, b byte) {
	if 3*i+2 >= len(d.Last) {
		return 0, 0, 0
	}
	return d.Last[3*i], d.Last[3*i+1], d.Last[3*i+2]
}

// Lit counts non-black pixels in the last frame.
func (d *Driver) Lit() int {
	lit := 0
	for i := 0; i+2 < len(d.Last); i += 3 {
		if d.Last[i]|d.Last[i+1]|d.Last[i+2] != 0 {
			lit++
		}
	}
	return lit
}
