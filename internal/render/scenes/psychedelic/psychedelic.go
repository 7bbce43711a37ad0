package psychedelic

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func Register(reg *render.Registry) error {
	for _, d := range []render.Descriptor{
		{Name: "Three Sin Two", Factory: newThreeSin},
		{Name: "Pop Fade", Factory: newPopFade},
		{Name: "Plasma Effect", Factory: newPlasma},
	} {
		d.Category = render.Psychedelic
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// threeSin drives each channel from its own sine, each cut off at level 80.
type threeSin struct {
	render.Base
	w1, w2, w3 uint8
}

func newThreeSin(env render.Env) (render.Renderer, error) {
	return &threeSin{Base: render.NewBase("Three Sin Two", env)}, nil
}

func (s *threeSin) Render(dst []render.Color, _ time.Duration) error {
	s.w1 += 2
	s.w2++
	s.w3 -= 3
	for k := range dst {
		kk := uint8(k)
		dst[k] = render.Color{
			R: render.Qsub8(render.Sin8(5*kk+s.w1), 80),
			G: render.Qsub8(render.Sin8(8*kk+s.w2), 80),
			B: render.Qsub8(render.Sin8(7*kk+s.w3), 80),
		}
	}
	return nil
}

type popFade struct{ render.Base }

func newPopFade(env render.Env) (render.Renderer, error) {
	return &popFade{render.NewBase("Pop Fade", env)}, nil
}

func (p *popFade) Render(dst []render.Color, _ time.Duration) error {
	if idx := p.Rand.IntN(50); idx < len(dst) {
		dst[idx] = render.Hex(0x13b0f2)
	}
	for i := range dst {
		dst[i] = dst[i].Scale(224)
	}
	return nil
}

type plasma struct {
	render.Base
	clock int
}

func newPlasma(env render.Env) (render.Renderer, error) {
	return &plasma{Base: render.NewBase("Plasma Effect", env)}, nil
}

func (p *plasma) Render(dst []render.Color, _ time.Duration) error {
	p.clock += 20
	y := p.clock / 10
	for i := range dst {
		x := i * 10
		idx := int(render.Sin8(uint8(x+y))) + int(render.Cos8(uint8(x-y)))
		dst[i] = render.RainbowPalette.At(uint8(idx), p.Bright)
	}
	return nil
}
