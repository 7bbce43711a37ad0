package led

import (
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// DefaultFreq suits WS2812 strips driven as NRZ over SPI.
const DefaultFreq = 2500 * physic.KiloHertz

// Strip is a Driver over a periph display.Drawer of width capacity and
// height 1.
type Strip struct {
	dev    display.Drawer
	img    *image.NRGBA
	closer io.Closer
}

func newStrip(dev display.Drawer, capacity int, closer io.Closer) *Strip {
	return &Strip{
		dev:    dev,
		img:    image.NewNRGBA(image.Rect(0, 0, capacity, 1)),
		closer: closer,
	}
}

// NewNRZ drives WS2812 LEDs through port.
func NewNRZ(port spi.Port, capacity int, freq physic.Frequency) (*Strip, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("invalid LED count: %d", capacity)
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: capacity,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, errors.Wrap(err, "nrzled")
	}
	if err := d.Halt(); err != nil {
		return nil, errors.Wrap(err, "nrzled: blank")
	}
	return newStrip(d, capacity, nil), nil
}

// OpenNRZ opens the named SPI port ("" for the first one) and drives it
// with NewNRZ.
func OpenNRZ(name string, capacity int, freq physic.Frequency) (*Strip, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open spi %q", name)
	}
	s, err := NewNRZ(p, capacity, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	s.closer = p
	return s, nil
}

// NewConsole prints the strip to the terminal.
func NewConsole(capacity int) *Strip {
	return newStrip(screen.New(capacity), capacity, nil)
}

func (s *Strip) Capacity() int { return s.img.Rect.Dx() }

func (s *Strip) Write(rgb []byte) error {
	if len(rgb)%3 != 0 {
		return errors.Errorf("frame length %d is not a multiple of 3", len(rgb))
	}
	n := len(rgb) / 3
	if n > s.Capacity() {
		return errors.Errorf("frame of %d pixels exceeds strip capacity %d", n, s.Capacity())
	}
	for x := 0; x < s.Capacity(); x++ {
		c := color.NRGBA{A: 0xFF}
		if x < n {
			c.R, c.G, c.B = rgb[3*x], rgb[3*x+1], rgb[3*x+2]
		}
		s.img.SetNRGBA(x, 0, c)
	}
	return errors.Wrap(s.dev.Draw(s.dev.Bounds(), s.img, image.Point{}), "strip draw")
}

// Close turns the LEDs off and releases the port.
func (s *Strip) Close() error {
	err := s.dev.Halt()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Wrap(err, "strip close")
}

func (s *Strip) String() string { return s.dev.String() }
