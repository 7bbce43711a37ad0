package led

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

type drawer struct {
	last   *image.NRGBA
	halted bool
}

func (d *drawer) String() string          { return "drawer" }
func (d *drawer) Halt() error             { d.halted = true; return nil }
func (d *drawer) ColorModel() color.Model { return color.NRGBAModel }
func (d *drawer) Bounds() image.Rectangle { return image.Rect(0, 0, 4, 1) }
func (d *drawer) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	img := image.NewNRGBA(src.Bounds())
	copy(img.Pix, src.(*image.NRGBA).Pix)
	d.last = img
	return nil
}

func TestEncode(t *testing.T) {
	px := []render.Color{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, Encode(nil, px))
	assert.Equal(t, []byte{9, 1, 2, 3, 4, 5, 6}, Encode([]byte{9}, px))
}

func TestStripBlanksTail(t *testing.T) {
	d := &drawer{}
	s := newStrip(d, 4, nil)
	require.NoError(t, s.Write([]byte{255, 0, 0, 0, 255, 0}))

	require.NotNil(t, d.last)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, d.last.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, d.last.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{A: 255}, d.last.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{A: 255}, d.last.NRGBAAt(3, 0))

	require.NoError(t, s.Close())
	assert.True(t, d.halted)
}

func TestStripRejectsBadFrames(t *testing.T) {
	s := newStrip(&drawer{}, 4, nil)
	assert.Error(t, s.Write([]byte{1, 2}))
	assert.Error(t, s.Write(make([]byte, 15)))
	assert.NoError(t, s.Write(nil))
}

func TestNRZOverRecordedSPI(t *testing.T) {
	buf := bytes.Buffer{}
	s, err := NewNRZ(spitest.NewRecordRaw(&buf), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", s.String())
	assert.Equal(t, 10, s.Capacity())

	buf.Reset()
	px := make([]render.Color, 10)
	render.Fill(px, render.Red)
	require.NoError(t, s.Write(Encode(nil, px)))
	first := buf.Len()
	assert.Greater(t, first, 3*10, "NRZ expands each bit")

	buf.Reset()
	require.NoError(t, s.Write(Encode(nil, px[:3])))
	assert.Equal(t, first, buf.Len(), "always clocks out the full strip")

	require.NoError(t, s.Close())
}

func TestNewNRZRejectsZeroCapacity(t *testing.T) {
	_, err := NewNRZ(spitest.NewRecordRaw(&bytes.Buffer{}), 0, 0)
	assert.Error(t, err)
}
