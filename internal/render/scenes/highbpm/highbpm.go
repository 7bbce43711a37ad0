package highbpm

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func Register(reg *render.Registry) error {
	for _, d := range []render.Descriptor{
		{Name: "Heartbeat", Factory: newHeartbeat},
		{Name: "Strobe Pulse", Factory: newStrobe, NoShuffle: true},
		{Name: "Beat Scanner", Factory: newScanner},
		{Name: "Color Slam", Factory: newSlam},
		{Name: "Beat Drop", Factory: newDrop},
	} {
		d.Category = render.HighBPM
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

type heartbeat struct{ render.Base }

func newHeartbeat(env render.Env) (render.Renderer, error) {
	return &heartbeat{render.NewBase("Heartbeat", env)}, nil
}

func (h *heartbeat) Render(dst []render.Color, t time.Duration) error {
	pulse := render.Beatsin8(40, 5, h.Bright, t, 0)
	render.Fill(dst, render.Red.Scale(pulse))
	return nil
}

type strobe struct{ render.Base }

func newStrobe(env render.Env) (render.Renderer, error) {
	return &strobe{render.NewBase("Strobe Pulse", env)}, nil
}

func (s *strobe) Render(dst []render.Color, t time.Duration) error {
	c := render.Black
	if render.Beatsin8(120, 50, 255, t, 0) > 200 {
		c = render.HSV(uint8(s.Rand.IntN(256)), 255, s.Bright)
	}
	render.Fill(dst, c)
	return nil
}

type scanner struct{ render.Base }

func newScanner(env render.Env) (render.Renderer, error) {
	return &scanner{render.NewBase("Beat Scanner", env)}, nil
}

func (s *scanner) Render(dst []render.Color, t time.Duration) error {
	n := len(dst)
	if n == 0 {
		return nil
	}
	hue := uint8(t / (10 * time.Millisecond))
	pos := render.Beatsin16(60, 0, n-1, t, 0)
	render.FadeToBlackBy(dst, 50)
	dst[pos] = dst[pos].Add(render.HSV(hue, 255, s.Bright))
	dst[n-1-pos] = dst[n-1-pos].Add(render.HSV(hue+128, 255, s.Bright))
	return nil
}

type slam struct {
	render.Base
	last uint8
}

func newSlam(env render.Env) (render.Renderer, error) {
	return &slam{Base: render.NewBase("Color Slam", env)}, nil
}

func (s *slam) Render(dst []render.Color, t time.Duration) error {
	beat := render.Beatsin8(60, 0, 100, t, 0)
	if beat < 10 && s.last >= 10 {
		render.Fill(dst, render.HSV(uint8(s.Rand.IntN(256)), 255, s.Bright))
	} else {
		render.FadeToBlackBy(dst, 30)
	}
	s.last = beat
	return nil
}

type drop struct {
	render.Base
	counter int
	hue     uint8
}

func newDrop(env render.Env) (render.Renderer, error) {
	return &drop{Base: render.NewBase("Beat Drop", env)}, nil
}

func (d *drop) Render(dst []render.Color, t time.Duration) error {
	n := len(dst)
	switch {
	case d.counter == 0:
		render.Fill(dst, render.HSV(d.hue, 255, render.Beatsin8(30, 50, 150, t, 0)))
	case d.counter < 10:
		render.Fill(dst, render.White)
	default:
		render.FadeToBlackBy(dst, 30)
		for i := 0; i < 5 && n > 0; i++ {
			dst[d.Rand.IntN(n)] = render.HSV(d.hue+uint8(d.Rand.IntN(64)), 255, d.Bright)
		}
	}
	d.counter++
	if d.counter >= 30 {
		d.counter = 0
		d.hue += 64
	}
	return nil
}
