// Package selftest lights known patterns on the strip at boot.
package selftest

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-blinky/internal/led"
)

type Kind string

const (
	None       Kind = ""
	FirstRed   Kind = "first_red"
	RGBTest    Kind = "rgb_channels"
	IndexSweep Kind = "index_sweep"
)

func ValidKind(k Kind) bool {
	switch k {
	case None, FirstRed, RGBTest, IndexSweep:
		return true
	}
	return false
}

type Plan struct {
	Kind Kind
	// Count is how many leading LEDs first_red lights.
	Count int
	// Hold is how long each step stays on the strip.
	Hold time.Duration
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner {
	if plan.Count <= 0 {
		plan.Count = 5
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step fills rgb for the next step over n LEDs; returns false when complete.
func (r *Runner) Step(n int, rgb []byte) bool {
	clear(rgb[:n*3])

	switch r.plan.Kind {
	case FirstRed:
		if r.step > 0 {
			return false
		}
		for i := 0; i < min(n, r.plan.Count); i++ {
			rgb[i*3] = 255
		}
	case RGBTest:
		phase := r.step
		if phase >= 3 {
			return false
		}
		for i := 0; i < n; i++ {
			rgb[i*3+phase] = 255
		}
	case IndexSweep:
		idx := r.step
		if idx >= n {
			return false
		}
		rgb[idx*3+0], rgb[idx*3+1], rgb[idx*3+2] = 255, 255, 255
	default:
		return false
	}
	r.step++
	return true
}

// Run plays the plan on d over n LEDs and leaves the strip dark.
func Run(ctx context.Context, d led.Driver, plan Plan, n int, log zerolog.Logger) error {
	log = log.With().Str("component", "selftest").Logger()
	r := NewRunner(plan)
	if r.Kind() == None {
		return nil
	}
	if n <= 0 {
		return errors.Errorf("selftest %s: no LEDs", plan.Kind)
	}
	rgb := make([]byte, n*3)
	steps := 0
	for r.Step(n, rgb) {
		if err := d.Write(rgb); err != nil {
			log.Error().Err(err).Int("step", steps).Msg("LED test failed; check wiring, pin or power supply")
			return errors.Wrapf(err, "selftest %s step %d", plan.Kind, steps)
		}
		steps++
		if err := sleep(ctx, plan.Hold); err != nil {
			break
		}
	}
	clear(rgb)
	if err := d.Write(rgb); err != nil {
		return errors.Wrap(err, "selftest: blank")
	}
	log.Info().Str("kind", string(plan.Kind)).Int("steps", steps).Msg("LED test passed")
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
