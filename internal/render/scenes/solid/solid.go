// Package solid fills the whole strip with one colour. None of these take
// part in shuffle.
package solid

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

type gradient func(mod uint8) render.Color

var solids = []struct {
	name string
	fn   gradient
}{
	{"Red Purple Blue", func(m uint8) render.Color { return render.Color{R: m, B: 255 - m} }},
	{"Green Yellow Red", func(m uint8) render.Color { return render.Color{R: 255 - m, G: m} }},
	{"Green Blue", func(m uint8) render.Color { return render.Color{G: 255 - m, B: m} }},
	{"Orange", func(uint8) render.Color { return render.Color{R: 255, G: 100} }},
	{"Purple", func(uint8) render.Color { return render.Color{R: 255, B: 255} }},
}

func Register(reg *render.Registry) error {
	for _, s := range solids {
		s := s
		err := reg.Register(render.Descriptor{
			Name:      s.name,
			Category:  render.SolidColors,
			NoShuffle: true,
			Factory: func(env render.Env) (render.Renderer, error) {
				return &Solid{Base: render.NewBase(s.name, env), fn: s.fn, Modifier: 128}, nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Solid paints fn(Modifier) on every pixel.
type Solid struct {
	render.Base
	Modifier uint8
	fn       gradient
}

func (s *Solid) Render(dst []render.Color, _ time.Duration) error {
	render.Fill(dst, s.fn(s.Modifier))
	return nil
}
