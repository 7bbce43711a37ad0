package input

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-blinky/internal/settings"
)

// Mode is the adjustment state entered by holding the button.
type Mode uint8

const (
	Idle Mode = iota
	Brightness
	LEDCountDown
	LEDCountUp
)

func (m Mode) String() string {
	switch m {
	case Brightness:
		return "brightness"
	case LEDCountDown:
		return "led_count_down"
	case LEDCountUp:
		return "led_count_up"
	}
	return "idle"
}

type IntentKind uint8

const (
	IntentNextPattern IntentKind = iota + 1
	IntentSetBrightness
	IntentSetNumLEDs
)

// Intent is a request for the pattern controller.
type Intent struct {
	Kind  IntentKind
	Value int
}

// Source produces button events.
type Source interface {
	Poll(now time.Time) []Event
}

// State exposes the values an adjustment starts from.
type State interface {
	Brightness() uint8
	NumLEDs() int
}

// Target receives committed intents.
type Target interface {
	NextPattern() error
	SetBrightness(v int)
	SetNumLEDs(n int)
}

type Options struct {
	// CountDown and CountUp are hold times measured from the initial press.
	CountDown time.Duration
	CountUp   time.Duration
	// Repeat is the step period while a mode is held.
	Repeat         time.Duration
	BrightnessStep int
	CountDownStep  int
	CountUpStep    int
	Limits         settings.Limits
}

// Controller turns gestures into intents. Adjustments accumulate in a
// pending value and are committed on release.
type Controller struct {
	src   Source
	state State
	opts  Options
	log   zerolog.Logger

	mode     Mode
	pending  int
	lastStep time.Time
}

func NewController(src Source, state State, opts Options, log zerolog.Logger) *Controller {
	if opts.Repeat <= 0 {
		opts.Repeat = 500 * time.Millisecond
	}
	return &Controller{
		src:   src,
		state: state,
		opts:  opts,
		log:   log.With().Str("component", "input").Logger(),
	}
}

// Poll reads the source and classifies its events.
func (c *Controller) Poll(now time.Time) []Intent {
	if c.src == nil {
		return nil
	}
	return c.Handle(now, c.src.Poll(now))
}

// Handle classifies events without touching the source.
func (c *Controller) Handle(now time.Time, events []Event) []Intent {
	var out []Intent
	for _, ev := range events {
		switch ev.Kind {
		case Click:
			if c.mode == Idle {
				c.log.Debug().Dur("held", ev.Held).Msg("click")
				out = append(out, Intent{Kind: IntentNextPattern})
			}
		case LongPressStart:
			c.enter(Brightness, int(c.state.Brightness()), now)
		case LongPressHeld:
			c.hold(ev.Held, now)
		case LongPressStop:
			if in, ok := c.commit(); ok {
				out = append(out, in)
			}
			c.mode = Idle
		}
	}
	return out
}

func (c *Controller) hold(held time.Duration, now time.Time) {
	switch {
	case c.mode == Idle:
		// press started before this controller saw it
		c.enter(Brightness, int(c.state.Brightness()), now)
	case held >= c.opts.CountUp && c.mode != LEDCountUp:
		c.enter(LEDCountUp, c.ledStart(), now)
		c.step()
		return
	case held >= c.opts.CountDown && c.mode == Brightness:
		c.enter(LEDCountDown, c.ledStart(), now)
		c.step()
		return
	}
	if now.Sub(c.lastStep) >= c.opts.Repeat {
		c.step()
		c.lastStep = now
	}
}

func (c *Controller) ledStart() int {
	if c.mode == LEDCountDown || c.mode == LEDCountUp {
		return c.pending
	}
	return c.state.NumLEDs()
}

func (c *Controller) enter(m Mode, start int, now time.Time) {
	c.log.Info().Stringer("mode", m).Int("from", start).Msg("adjust mode")
	c.mode = m
	c.pending = start
	c.lastStep = now
}

func (c *Controller) step() {
	lim := c.opts.Limits
	switch c.mode {
	case Brightness:
		c.pending += c.opts.BrightnessStep
		if c.pending > int(lim.MaxBrightness) {
			c.pending = int(lim.MinBrightness)
		}
	case LEDCountDown:
		c.pending -= c.opts.CountDownStep
		if c.pending < lim.MinLEDs {
			c.pending = lim.MinLEDs
		}
	case LEDCountUp:
		c.pending += c.opts.CountUpStep
		if c.pending > lim.MaxLEDs {
			c.pending = lim.MaxLEDs
		}
	}
}

func (c *Controller) commit() (Intent, bool) {
	switch c.mode {
	case Brightness:
		c.log.Info().Int("brightness", c.pending).Msg("commit")
		return Intent{Kind: IntentSetBrightness, Value: c.pending}, true
	case LEDCountDown, LEDCountUp:
		c.log.Info().Int("num_leds", c.pending).Msg("commit")
		return Intent{Kind: IntentSetNumLEDs, Value: c.pending}, true
	}
	return Intent{}, false
}

// Mode is the current adjustment mode.
func (c *Controller) Mode() Mode { return c.mode }

// Pending is the uncommitted value of the current mode.
func (c *Controller) Pending() int { return c.pending }

// Apply forwards intents to t in order.
func Apply(intents []Intent, t Target, log zerolog.Logger) {
	for _, in := range intents {
		switch in.Kind {
		case IntentNextPattern:
			if err := t.NextPattern(); err != nil {
				log.Warn().Err(err).Msg("next pattern")
			}
		case IntentSetBrightness:
			t.SetBrightness(in.Value)
		case IntentSetNumLEDs:
			t.SetNumLEDs(in.Value)
		}
	}
}
