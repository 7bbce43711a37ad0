package intense

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func Register(reg *render.Registry) error {
	for _, d := range []render.Descriptor{
		{Name: "Hyper Spin", Factory: newHyperSpin},
		{Name: "Beat Trails", Factory: newBeatTrails},
	} {
		d.Category = render.Intense
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

type hyperSpin struct {
	render.Base
	angle int
}

func newHyperSpin(env render.Env) (render.Renderer, error) {
	return &hyperSpin{Base: render.NewBase("Hyper Spin", env)}, nil
}

func (h *hyperSpin) Render(dst []render.Color, t time.Duration) error {
	h.angle += render.Beatsin16(60, 10, 30, t, 0)
	v := render.Beatsin8(120, 200, h.Bright, t, 0)
	for i := range dst {
		dst[i] = render.RainbowPalette.At(uint8(i*10-h.angle), v)
	}
	return nil
}

type beatTrails struct{ render.Base }

func newBeatTrails(env render.Env) (render.Renderer, error) {
	return &beatTrails{render.NewBase("Beat Trails", env)}, nil
}

func (b *beatTrails) Render(dst []render.Color, t time.Duration) error {
	if len(dst) == 0 {
		return nil
	}
	pos := render.Beatsin16(30, 0, len(dst)-1, t, 0)
	dst[pos] = dst[pos].Add(render.HSV(uint8(t/(10*time.Millisecond)), 255, b.Bright))
	return nil
}
