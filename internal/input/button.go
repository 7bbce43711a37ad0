package input

import (
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// EventKind is a classified button gesture.
type EventKind uint8

const (
	Click EventKind = iota + 1
	LongPressStart
	LongPressHeld
	LongPressStop
)

func (k EventKind) String() string {
	switch k {
	case Click:
		return "click"
	case LongPressStart:
		return "long_press_start"
	case LongPressHeld:
		return "long_press_held"
	case LongPressStop:
		return "long_press_stop"
	}
	return "unknown"
}

// Event is one gesture. Held is how long the button has been down.
type Event struct {
	Kind EventKind
	Held time.Duration
}

type ButtonOptions struct {
	Debounce  time.Duration
	LongPress time.Duration
}

// Button is a polled, debounced, active-low push button.
type Button struct {
	pin  gpio.PinIn
	opts ButtonOptions

	raw       bool
	rawSince  time.Time
	pressed   bool
	pressedAt time.Time
	long      bool
}

// NewButton configures pin as a pulled-up input.
func NewButton(pin gpio.PinIn, opts ButtonOptions) (*Button, error) {
	if pin == nil {
		return nil, errors.New("button: nil pin")
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, errors.Wrapf(err, "button: configure %s", pin)
	}
	if opts.LongPress <= 0 {
		opts.LongPress = time.Second
	}
	return &Button{pin: pin, opts: opts}, nil
}

// Poll samples the pin once and returns the gestures completed or advanced
// since the previous call. It never blocks.
func (b *Button) Poll(now time.Time) []Event {
	down := b.pin.Read() == gpio.Low
	if down != b.raw {
		b.raw = down
		b.rawSince = now
	}

	var out []Event
	if b.raw != b.pressed && now.Sub(b.rawSince) >= b.opts.Debounce {
		b.pressed = b.raw
		if b.pressed {
			b.pressedAt = now
			b.long = false
		} else {
			held := now.Sub(b.pressedAt)
			if b.long {
				out = append(out, Event{Kind: LongPressStop, Held: held})
			} else {
				out = append(out, Event{Kind: Click, Held: held})
			}
			b.long = false
		}
	}

	if b.pressed {
		held := now.Sub(b.pressedAt)
		switch {
		case !b.long && held >= b.opts.LongPress:
			b.long = true
			out = append(out, Event{Kind: LongPressStart, Held: held})
		case b.long:
			out = append(out, Event{Kind: LongPressHeld, Held: held})
		}
	}
	return out
}

// Pressed reports the debounced state.
func (b *Button) Pressed() bool { return b.pressed }
