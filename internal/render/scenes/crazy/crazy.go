package crazy

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func Register(reg *render.Registry) error {
	for _, d := range []render.Descriptor{
		{Name: "Juggle", Factory: newJuggle},
		{Name: "Sinelon", Factory: newSinelon},
		{Name: "Fire Tribe", Factory: newFire},
	} {
		d.Category = render.Crazy
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// juggle weaves eight dots in and out of sync with each other.
type juggle struct{ render.Base }

func newJuggle(env render.Env) (render.Renderer, error) {
	return &juggle{render.NewBase("Juggle", env)}, nil
}

func (j *juggle) Render(dst []render.Color, t time.Duration) error {
	if len(dst) == 0 {
		return nil
	}
	render.FadeToBlackBy(dst, 20)
	var hue uint8
	for i := 0; i < 8; i++ {
		pos := render.Beatsin16(float64(i+7), 0, len(dst)-1, t, 0)
		c := render.HSV(hue, 200, j.Bright)
		dst[pos] = render.Color{R: dst[pos].R | c.R, G: dst[pos].G | c.G, B: dst[pos].B | c.B}
		hue += 32
	}
	return nil
}

type sinelon struct{ render.Base }

func newSinelon(env render.Env) (render.Renderer, error) {
	return &sinelon{render.NewBase("Sinelon", env)}, nil
}

func (s *sinelon) Render(dst []render.Color, t time.Duration) error {
	if len(dst) == 0 {
		return nil
	}
	render.FadeToBlackBy(dst, 20)
	pos := render.Beatsin16(13, 0, len(dst)-1, t, 0)
	dst[pos] = dst[pos].Add(render.HSV(uint8(t/(20*time.Millisecond)), 255, s.Bright))
	return nil
}

// fire is the classic heat-diffusion flame, one heat cell per pixel.
type fire struct {
	render.Base
	heat [render.MaxLEDs]uint8
}

func newFire(env render.Env) (render.Renderer, error) {
	return &fire{Base: render.NewBase("Fire Tribe", env)}, nil
}

const (
	cooling  = 55
	sparking = 120
)

func (f *fire) Render(dst []render.Color, _ time.Duration) error {
	n := len(dst)
	if n == 0 {
		return nil
	}
	heat := f.heat[:n]
	for i := range heat {
		heat[i] = render.Qsub8(heat[i], uint8(f.Rand.IntN(min((cooling*10)/n+3, 256))))
	}
	for k := n - 1; k >= 2; k-- {
		heat[k] = uint8((int(heat[k-1]) + 2*int(heat[k-2])) / 3)
	}
	if f.Rand.IntN(256) < sparking {
		y := f.Rand.IntN(min(7, n))
		heat[y] = render.Qadd8(heat[y], uint8(160+f.Rand.IntN(96)))
	}
	for i, h := range heat {
		dst[i] = render.HeatPalette.At(render.Scale8(h, 240), f.Bright)
	}
	return nil
}
