// Package soothing holds slow, low-contrast patterns.
package soothing

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func Register(reg *render.Registry) error {
	for _, d := range []render.Descriptor{
		{Name: "Rainbow with Glitter", Factory: newRainbowGlitter},
		{Name: "Breathing", Factory: newBreathing},
		{Name: "Gentle Pulse Wave", Factory: newGentlePulse},
		{Name: "Ocean Waves", Factory: newOceanWaves},
		{Name: "Color Meditation", Factory: newMeditation},
	} {
		d.Category = render.SlowAndSoothing
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

type rainbowGlitter struct{ render.Base }

func newRainbowGlitter(env render.Env) (render.Renderer, error) {
	return &rainbowGlitter{render.NewBase("Rainbow with Glitter", env)}, nil
}

func (r *rainbowGlitter) Render(dst []render.Color, t time.Duration) error {
	render.FillRainbow(dst, uint8(t/(20*time.Millisecond)), 7)
	r.Glitter(dst, 80)
	return nil
}

type breathing struct{ render.Base }

func newBreathing(env render.Env) (render.Renderer, error) {
	return &breathing{render.NewBase("Breathing", env)}, nil
}

func (b *breathing) Render(dst []render.Color, t time.Duration) error {
	// soft blue at 6 breaths per minute
	v := render.Beatsin8(6, 5, b.Bright, t, 0)
	render.Fill(dst, render.HSV(140, 150, v))
	return nil
}

type gentlePulse struct{ render.Base }

func newGentlePulse(env render.Env) (render.Renderer, error) {
	return &gentlePulse{render.NewBase("Gentle Pulse Wave", env)}, nil
}

func (g *gentlePulse) Render(dst []render.Color, t time.Duration) error {
	if len(dst) == 0 {
		return nil
	}
	render.FadeToBlackBy(dst, 20)
	pos := render.Beatsin16(5, 0, len(dst)-1, t, 0)
	v := render.Beatsin8(10, 50, 150, t, 0)
	dst[pos] = render.HSV(uint8(t/(235*time.Millisecond)), 200, v)
	return nil
}

type oceanWaves struct {
	render.Base
	offset uint8
}

func newOceanWaves(env render.Env) (render.Renderer, error) {
	return &oceanWaves{Base: render.NewBase("Ocean Waves", env)}, nil
}

func (o *oceanWaves) Render(dst []render.Color, _ time.Duration) error {
	o.offset += 3
	for i := range dst {
		wave := render.Sin8(uint8(i*10) + o.offset)
		dst[i] = render.OceanPalette.At(wave, render.Scale8(wave, o.Bright))
	}
	return nil
}

type meditation struct {
	render.Base
	hue     uint8
	changed time.Duration
}

func newMeditation(env render.Env) (render.Renderer, error) {
	m := &meditation{Base: render.NewBase("Color Meditation", env)}
	m.hue = uint8(m.Rand.IntN(256))
	return m, nil
}

func (m *meditation) Render(dst []render.Color, t time.Duration) error {
	if t-m.changed > 5*time.Minute {
		m.hue = uint8(m.Rand.IntN(256))
		m.changed = t
	}
	hue := m.hue + uint8(t/(100*time.Millisecond))
	n := len(dst)
	if n == 1 {
		dst[0] = render.HSV(hue, 240, m.Bright)
		return nil
	}
	for i := range dst {
		p := uint8(255 * i / (n - 1))
		dst[i] = render.HSV(hue+render.Scale8(p, 30), 255-render.Scale8(p, 55), render.Qsub8(m.Bright, render.Scale8(p, 30)))
	}
	return nil
}
