package sequence

import (
	"time"

	"github.com/coreman2200/funtimes-blinky/internal/render"
)

func (c *Controller) Ready() bool          { return c.state != Uninitialized }
func (c *Controller) InTransition() bool   { return c.state == Transitioning }
func (c *Controller) Brightness() uint8    { return c.brightness }
func (c *Controller) NumLEDs() int         { return c.frame.Len() }
func (c *Controller) Len() int             { return c.reg.Len() }
func (c *Controller) Frame() *render.Frame { return c.frame }

// Active is the live renderer, nil when none.
func (c *Controller) Active() render.Renderer { return c.active }

// SelectedIndex is the slot the user picked; with a shuffle slot selected
// it stays on that slot while shuffled patterns come and go.
func (c *Controller) SelectedIndex() int { return c.selected }

// ActiveIndex is the pattern being rendered, -1 when none.
func (c *Controller) ActiveIndex() int { return c.shown }

func (c *Controller) SelectedName() string { return c.nameAt(c.selected) }

func (c *Controller) ActiveName() string {
	if c.active == nil {
		return ""
	}
	return c.active.Name()
}

// InShuffle reports whether a shuffle slot is selected.
func (c *Controller) InShuffle() bool {
	if c.reg.Len() == 0 {
		return false
	}
	d, ok := c.reg.Get(c.selected)
	return ok && d.Category == render.Shuffle
}

// Transition returns the running transition's target and start time.
func (c *Controller) Transition() (target int, start time.Time, ok bool) {
	if c.state != Transitioning {
		return 0, time.Time{}, false
	}
	return c.xf.target, c.xf.start, true
}

// NextShuffle is when the next shuffle is due; zero outside shuffle mode.
func (c *Controller) NextShuffle() time.Time {
	if !c.InShuffle() {
		return time.Time{}
	}
	return c.shuffleAt.Add(c.shuffleEvery)
}
