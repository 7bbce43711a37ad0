package party

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func Register(reg *render.Registry) error {
	for _, d := range []render.Descriptor{
		{Name: "Rainbow March", Factory: newMarch},
		{Name: "Confetti", Factory: newConfetti},
		{Name: "BPM", Factory: newBPM},
		{Name: "Twinkle Stars", Factory: newTwinkle},
	} {
		d.Category = render.PartyVibe
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

type march struct{ render.Base }

func newMarch(env render.Env) (render.Renderer, error) {
	return &march{render.NewBase("Rainbow March", env)}, nil
}

func (m *march) Render(dst []render.Color, t time.Duration) error {
	render.FillRainbow(dst, uint8(t/(2*time.Millisecond)), 2)
	return nil
}

type confetti struct{ render.Base }

func newConfetti(env render.Env) (render.Renderer, error) {
	return &confetti{render.NewBase("Confetti", env)}, nil
}

func (c *confetti) Render(dst []render.Color, t time.Duration) error {
	if len(dst) == 0 {
		return nil
	}
	render.FadeToBlackBy(dst, 10)
	pos := c.Rand.IntN(len(dst))
	hue := uint8(t/(20*time.Millisecond)) + uint8(c.Rand.IntN(64))
	dst[pos] = dst[pos].Add(render.HSV(hue, 200, c.Bright))
	return nil
}

type bpm struct{ render.Base }

func newBPM(env render.Env) (render.Renderer, error) {
	return &bpm{render.NewBase("BPM", env)}, nil
}

func (b *bpm) Render(dst []render.Color, t time.Duration) error {
	hue := uint8(t / (20 * time.Millisecond))
	beat := render.Beatsin8(62, 64, b.Bright, t, 0)
	for i := range dst {
		dst[i] = render.PartyPalette.At(hue+uint8(i*2), beat-hue+uint8(i*10))
	}
	return nil
}

type twinkle struct{ render.Base }

func newTwinkle(env render.Env) (render.Renderer, error) {
	return &twinkle{render.NewBase("Twinkle Stars", env)}, nil
}

func (tw *twinkle) Render(dst []render.Color, _ time.Duration) error {
	if len(dst) == 0 {
		return nil
	}
	render.FadeToBlackBy(dst, 10)
	pos := tw.Rand.IntN(len(dst))
	dst[pos] = dst[pos].Add(render.HSV(uint8(64+tw.Rand.IntN(128)), 200, tw.Bright))
	return nil
}
