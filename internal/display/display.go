// Package display renders controller status on a small monochrome OLED.
package display

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Screen identifies what is on the panel.
type Screen uint8

const (
	ScreenNone Screen = iota
	ScreenBoot
	ScreenError
	ScreenBrightness
	ScreenLEDCount
	ScreenNormal
)

func (s Screen) String() string {
	switch s {
	case ScreenBoot:
		return "boot"
	case ScreenError:
		return "error"
	case ScreenBrightness:
		return "brightness"
	case ScreenLEDCount:
		return "led_count"
	case ScreenNormal:
		return "normal"
	}
	return "none"
}

// Status is a snapshot of everything the panel can show.
type Status struct {
	Ready bool

	AdjustBrightness bool
	AdjustLEDs       bool

	Brightness    uint8
	MinBrightness uint8
	MaxBrightness uint8
	NumLEDs       int

	InShuffle bool
	Slot      string // selected slot name, shown while shuffling
	Index     int
	Name      string
}

// Lines picks the screen for s and its text rows, top to bottom.
func Lines(s Status) (Screen, []string) {
	switch {
	case !s.Ready:
		return ScreenError, []string{"SYS ERROR", "Not ready"}
	case s.AdjustBrightness:
		return ScreenBrightness, []string{"BRIGHTNESS", fmt.Sprintf("%d%% BRIGHT", percent(s, 10))}
	case s.AdjustLEDs:
		return ScreenLEDCount, []string{"LED COUNT", fmt.Sprintf("%d LEDs", s.NumLEDs)}
	}
	bottom := fmt.Sprintf("B:%d%% L:%d", percent(s, 20), s.NumLEDs)
	name := s.Name
	if name == "" {
		name = "---"
	}
	if s.InShuffle {
		return ScreenNormal, []string{s.Slot, name, bottom}
	}
	return ScreenNormal, []string{name, fmt.Sprintf("#%d", s.Index), bottom}
}

// percent maps brightness onto [lo, 100].
func percent(s Status, lo int) int {
	bmin, bmax := int(s.MinBrightness), int(s.MaxBrightness)
	if bmax <= bmin {
		return 100
	}
	b := max(bmin, min(int(s.Brightness), bmax))
	return lo + (b-bmin)*(100-lo)/(bmax-bmin)
}

type Options struct {
	// Interval throttles Update.
	Interval time.Duration
	// Area is the visible part of the panel; empty means all of it.
	Area image.Rectangle
	// Size is used when there is no device.
	Size image.Point
}

// Adapter draws Status onto a display.Drawer. A nil device keeps the
// adapter working without output.
type Adapter struct {
	dev   display.Drawer
	img   *image1bit.VerticalLSB
	area  image.Rectangle
	opts  Options
	log   zerolog.Logger
	quiet zerolog.Logger

	last   time.Time
	screen Screen
	lines  []string
}

func New(dev display.Drawer, opts Options, log zerolog.Logger) *Adapter {
	if opts.Interval <= 0 {
		opts.Interval = 250 * time.Millisecond
	}
	bounds := image.Rect(0, 0, 128, 64)
	if dev != nil {
		bounds = dev.Bounds()
	} else if opts.Size.X > 0 && opts.Size.Y > 0 {
		bounds = image.Rectangle{Max: opts.Size}
	}
	area := opts.Area.Intersect(bounds)
	if area.Empty() {
		area = bounds
	}
	a := &Adapter{
		dev:  dev,
		img:  image1bit.NewVerticalLSB(bounds),
		area: area,
		opts: opts,
		log:  log.With().Str("component", "display").Logger(),
	}
	a.quiet = a.log.Sample(&zerolog.BurstSampler{Burst: 1, Period: 5 * time.Second})
	if dev == nil {
		a.log.Info().Msg("no display attached")
	}
	return a
}

// Boot shows the boot screen right away.
func (a *Adapter) Boot(version string) error {
	return a.show(ScreenBoot, []string{"Booting...", "blinky", "V: " + version})
}

// Update redraws from s unless the last redraw was less than the interval
// ago. It reports whether a redraw happened.
func (a *Adapter) Update(now time.Time, s Status) (bool, error) {
	if !a.last.IsZero() && now.Sub(a.last) < a.opts.Interval {
		return false, nil
	}
	a.last = now
	screen, lines := Lines(s)
	return true, a.show(screen, lines)
}

func (a *Adapter) show(screen Screen, lines []string) error {
	if screen != a.screen {
		a.log.Debug().Stringer("screen", screen).Msg("screen changed")
	}
	a.screen = screen
	a.lines = lines

	draw.Draw(a.img, a.img.Bounds(), &image.Uniform{image1bit.Off}, image.Point{}, draw.Src)
	face := basicfont.Face7x13
	d := font.Drawer{Dst: a.img, Src: &image.Uniform{image1bit.On}, Face: face}
	for i, line := range lines {
		w := d.MeasureString(line).Ceil()
		x := a.area.Min.X + (a.area.Dx()-w)/2
		if x < a.area.Min.X {
			x = a.area.Min.X
		}
		y := a.area.Min.Y + face.Ascent + i*face.Height
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}

	if a.dev == nil {
		return nil
	}
	if err := a.dev.Draw(a.dev.Bounds(), a.img, image.Point{}); err != nil {
		a.quiet.Warn().Err(err).Msg("display draw failed")
		return errors.Wrap(err, "display: draw")
	}
	return nil
}

// Close blanks and halts the panel.
func (a *Adapter) Close() error {
	if a.dev == nil {
		return nil
	}
	draw.Draw(a.img, a.img.Bounds(), &image.Uniform{image1bit.Off}, image.Point{}, draw.Src)
	_ = a.dev.Draw(a.dev.Bounds(), a.img, image.Point{})
	return errors.Wrap(a.dev.Halt(), "display: halt")
}

func (a *Adapter) Screen() Screen                { return a.screen }
func (a *Adapter) Text() []string                { return a.lines }
func (a *Adapter) Image() *image1bit.VerticalLSB { return a.img }
